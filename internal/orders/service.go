package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/internal/cart"
	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
	"github.com/cartline/cartline-backend/pkg/events"
	"github.com/cartline/cartline-backend/pkg/logger"
	"github.com/cartline/cartline-backend/pkg/metrics"
	"github.com/cartline/cartline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order placement, status transitions and reads.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo      Repository
	carts     cart.CartRepository
	tx        txRunner
	publisher events.Publisher
	metrics   *metrics.CommerceMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams bundles the order service dependencies. Metrics and Logger are optional.
type ServiceParams struct {
	Repo      Repository
	Carts     cart.CartRepository
	Tx        txRunner
	Publisher events.Publisher
	Metrics   *metrics.CommerceMetrics
	Logger    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		repo:      params.Repo,
		carts:     params.Carts,
		tx:        params.Tx,
		publisher: publisher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	cartID, err := parseID("cartId", input.CartID)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		status, err := parseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		if status != enums.OrderStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders are created in pending status").
				WithDetails(map[string]string{"status": "must be pending"})
		}
	}
	cancellable := true
	if input.Cancellable != nil {
		cancellable = *input.Cancellable
	}

	var order *models.Order
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)

		source, err := cartRepo.FindByID(ctx, cartID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if source.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cart belongs to another user")
		}
		if len(source.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}

		order = snapshot(source, cancellable)
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return cart.Reset(ctx, cartRepo, source)
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, userID, events.OrderCreatedData{
		OrderID:       order.ID,
		CartID:        cartID,
		TotalItems:    order.TotalItems,
		TotalQuantity: order.TotalQuantity,
		TotalPrice:    order.TotalPrice.StringFixed(2),
		Currency:      order.Currency.String(),
	})
	s.metrics.IncOrderCreated()
	return FromModel(order), nil
}

func (s *service) UpdateStatus(ctx context.Context, userID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	orderID, err := parseID("orderId", input.OrderID)
	if err != nil {
		return nil, err
	}
	requested, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	order, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	current := order.Status

	switch {
	case current.IsTerminal():
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", current)
	case requested == enums.OrderStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already pending")
	case requested == enums.OrderStatusCancelled && !order.Cancellable:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not cancellable")
	}

	updated, err := s.repo.UpdateStatusIfCurrent(ctx, order.ID, current, requested)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}
	order.Status = requested
	order.UpdatedAt = s.now().UTC()

	s.publish(ctx, events.OrderStatusUpdated, userID, events.OrderStatusUpdatedData{
		OrderID: order.ID,
		From:    current.String(),
		To:      requested.String(),
	})
	s.metrics.IncOrderTransition(current.String(), requested.String())
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	page := pagination.BuildPage(items, params.Limit, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &page, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) owned(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

// publish runs after commit. A broker failure is logged and never undoes the write.
func (s *service) publish(ctx context.Context, eventType string, userID uuid.UUID, data any) {
	env, err := events.NewEnvelope(eventType, userID, data, s.now())
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "event_type", eventType)
		s.logg.Error(ctx, "publish order event", err)
	}
}

func snapshot(source *models.Cart, cancellable bool) *models.Order {
	order := &models.Order{
		UserID:      source.UserID,
		TotalItems:  source.TotalItems,
		TotalPrice:  source.TotalPrice,
		Currency:    source.Currency,
		Cancellable: cancellable,
		Status:      enums.OrderStatusPending,
		Items:       make([]models.OrderItem, 0, len(source.Items)),
	}
	for i, line := range source.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Position:  i,
		})
		order.TotalQuantity += line.Quantity
	}
	return order
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a valid id", field).
			WithDetails(map[string]string{field: "must be a valid id"})
	}
	return id, nil
}

func parseStatus(raw string) (enums.OrderStatus, error) {
	status, err := enums.ParseOrderStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"status": enums.OrderStatusValues()})
	}
	return status, nil
}
