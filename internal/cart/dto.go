package cart

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
	"github.com/cartline/cartline-backend/pkg/types"
)

// CartItemDTO is one line of a cart.
type CartItemDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CartDTO is the client view of a cart with its running totals.
type CartDTO struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"userId"`
	Items      []CartItemDTO  `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPrice json.Number    `json:"totalPrice"`
	Currency   enums.Currency `json:"currency"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// AddItemInput is the body of POST /users/{userId}/cart.
type AddItemInput struct {
	ProductID string  `json:"productId" validate:"required"`
	CartID    *string `json:"cartId,omitempty"`
}

// UpdateItemInput is the body of PUT /users/{userId}/cart.
// RemoveProduct 0 drops the whole line and 1 takes one unit off it.
type UpdateItemInput struct {
	CartID        string `json:"cartId" validate:"required"`
	ProductID     string `json:"productId" validate:"required"`
	RemoveProduct *int   `json:"removeProduct" validate:"required"`
}

const (
	RemoveLine = 0
	RemoveOne  = 1
)

func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemDTO{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return &CartDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      items,
		TotalItems: c.TotalItems,
		TotalPrice: types.Amount(c.TotalPrice),
		Currency:   c.Currency,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
