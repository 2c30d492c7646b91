package products

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
	"github.com/cartline/cartline-backend/pkg/types"
)

// ProductDTO is the catalogue view of a product.
type ProductDTO struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       json.Number    `json:"price"`
	Currency    enums.Currency `json:"currency"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CreateProductInput is the decoded body of POST /products.
type CreateProductInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required"`
	Currency    string `json:"currency" validate:"required,len=3"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       types.Amount(p.Price),
		Currency:    p.Currency,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
