package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
	"github.com/cartline/cartline-backend/pkg/pagination"
	"github.com/cartline/cartline-backend/pkg/types"
)

// OrderItemDTO is one copied cart line.
type OrderItemDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// OrderDTO is the client view of an order.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"userId"`
	Items         []OrderItemDTO    `json:"items"`
	TotalItems    int               `json:"totalItems"`
	TotalPrice    json.Number       `json:"totalPrice"`
	TotalQuantity int               `json:"totalQuantity"`
	Currency      enums.Currency    `json:"currency"`
	Cancellable   bool              `json:"cancellable"`
	Status        enums.OrderStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// CreateOrderInput is the body of POST /users/{userId}/orders.
type CreateOrderInput struct {
	CartID      string  `json:"cartId" validate:"required"`
	Cancellable *bool   `json:"cancellable,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// UpdateOrderInput is the body of PUT /users/{userId}/orders.
type UpdateOrderInput struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

// OrderListResult is one page of a user's orders, newest first.
type OrderListResult = pagination.Page[OrderDTO]

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return &OrderDTO{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		TotalItems:    o.TotalItems,
		TotalPrice:    types.Amount(o.TotalPrice),
		TotalQuantity: o.TotalQuantity,
		Currency:      o.Currency,
		Cancellable:   o.Cancellable,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
