package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/currency"
	"github.com/cartline/cartline-backend/pkg/db/models"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
	"github.com/cartline/cartline-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the cart operations of a single user.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*CartDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo      CartRepository
	tx        txRunner
	products  productLoader
	converter currency.Converter
	metrics   *metrics.CommerceMetrics
}

// ServiceParams bundles the cart service dependencies. Metrics is optional.
type ServiceParams struct {
	Repo      CartRepository
	Tx        txRunner
	Products  productLoader
	Converter currency.Converter
	Metrics   *metrics.CommerceMetrics
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Converter == nil {
		return nil, fmt.Errorf("currency converter required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		products:  params.Products,
		converter: params.Converter,
		metrics:   params.Metrics,
	}, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	productID, err := parseID("productId", input.ProductID)
	if err != nil {
		return nil, err
	}
	var cartID *uuid.UUID
	if input.CartID != nil {
		id, err := parseID("cartId", *input.CartID)
		if err != nil {
			return nil, err
		}
		cartID = &id
	}

	unitPrice, err := s.unitPrice(ctx, productID)
	if err != nil {
		return nil, err
	}

	var result *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		var cart *models.Cart
		if cartID != nil {
			cart, err = s.lockOwnedCart(ctx, txRepo, userID, *cartID)
		} else {
			cart, err = txRepo.EnsureForUser(ctx, userID, s.converter.Reference())
			if err != nil {
				err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
			}
		}
		if err != nil {
			return err
		}

		if idx := lineIndex(cart, productID); idx >= 0 {
			line := &cart.Items[idx]
			line.Quantity++
			if err := txRepo.UpdateItemQuantity(ctx, line.ID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
			}
			cart.TotalPrice = cart.TotalPrice.Add(line.UnitPrice)
		} else {
			line := models.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  1,
				UnitPrice: unitPrice,
				Position:  nextPosition(cart),
			}
			if err := txRepo.AddItem(ctx, &line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
			}
			cart.Items = append(cart.Items, line)
			cart.TotalItems++
			cart.TotalPrice = cart.TotalPrice.Add(unitPrice)
		}

		if err := txRepo.SaveTotals(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart totals")
		}
		result = cart
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.IncCartMutation(metrics.CartOpAdd)
	return FromModel(result), nil
}

func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	if input.RemoveProduct == nil || (*input.RemoveProduct != RemoveLine && *input.RemoveProduct != RemoveOne) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "removeProduct must be 0 or 1").
			WithDetails(map[string]string{"removeProduct": "must be 0 or 1"})
	}
	cartID, err := parseID("cartId", input.CartID)
	if err != nil {
		return nil, err
	}
	productID, err := parseID("productId", input.ProductID)
	if err != nil {
		return nil, err
	}

	var result *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.lockOwnedCart(ctx, txRepo, userID, cartID)
		if err != nil {
			return err
		}
		idx := lineIndex(cart, productID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found in cart")
		}
		line := cart.Items[idx]

		if *input.RemoveProduct == RemoveOne && line.Quantity > 1 {
			line.Quantity--
			if err := txRepo.UpdateItemQuantity(ctx, line.ID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
			}
			cart.Items[idx] = line
			cart.TotalPrice = cart.TotalPrice.Sub(line.UnitPrice)
		} else {
			if err := txRepo.DeleteItem(ctx, line.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
			}
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			cart.TotalItems--
			cart.TotalPrice = cart.TotalPrice.Sub(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		normalizeTotals(cart)

		if err := txRepo.SaveTotals(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart totals")
		}
		result = cart
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.IncCartMutation(metrics.CartOpRemove)
	return FromModel(result), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]CartDTO, error) {
	cart, err := s.repo.FindByUserID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []CartDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return []CartDTO{*FromModel(cart)}, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var result *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByUserID(ctx, userID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is already empty")
		}
		if err := Reset(ctx, txRepo, cart); err != nil {
			return err
		}
		result = cart
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.IncCartMutation(metrics.CartOpClear)
	return FromModel(result), nil
}

// Reset empties cart and zeroes its aggregates using repo, which must be bound
// to the transaction holding the cart lock.
func Reset(ctx context.Context, repo CartRepository, cart *models.Cart) error {
	if err := repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart items")
	}
	cart.Items = []models.CartItem{}
	cart.TotalItems = 0
	cart.TotalPrice = decimal.Zero
	if err := repo.SaveTotals(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart totals")
	}
	return nil
}

func (s *service) lockOwnedCart(ctx context.Context, repo CartRepository, userID, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByID(ctx, cartID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if cart.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart belongs to another user")
	}
	return cart, nil
}

// unitPrice loads a live product and returns its price in the reference currency.
func (s *service) unitPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	price, err := s.converter.ToReference(product.Price, product.Currency)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "convert product price")
	}
	return price, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a valid id", field).
			WithDetails(map[string]string{field: "must be a valid id"})
	}
	return id, nil
}

func lineIndex(cart *models.Cart, productID uuid.UUID) int {
	for i, item := range cart.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func nextPosition(cart *models.Cart) int {
	next := 0
	for _, item := range cart.Items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}

// normalizeTotals keeps aggregates non-negative and exactly zero for an empty cart.
func normalizeTotals(cart *models.Cart) {
	if len(cart.Items) == 0 {
		cart.TotalItems = 0
		cart.TotalPrice = decimal.Zero
		return
	}
	if cart.TotalItems < 0 {
		cart.TotalItems = 0
	}
	if cart.TotalPrice.IsNegative() {
		cart.TotalPrice = decimal.Zero
	}
}
