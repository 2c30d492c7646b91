package products

import (
	"github.com/cartline/cartline-backend/pkg/enums"
	"github.com/cartline/cartline-backend/pkg/pagination"
)

// ListProductsInput captures the browse filters and the page window.
type ListProductsInput struct {
	Currency   *enums.Currency
	Pagination pagination.Params
}

// ProductListResult is one page of the catalogue, newest first.
type ProductListResult = pagination.Page[ProductDTO]
