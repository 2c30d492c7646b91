package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartline/cartline-backend/internal/products"
	"github.com/cartline/cartline-backend/pkg/enums"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
)

type stubProductService struct {
	created *products.CreateProductInput
	listed  *products.ListProductsInput
	deleted uuid.UUID
	err     error
}

func (s *stubProductService) CreateProduct(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	s.created = &input
	return &products.ProductDTO{ID: uuid.New(), Title: input.Title, Price: "1.00"}, s.err
}

func (s *stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &products.ProductDTO{ID: id, Price: "1.00"}, nil
}

func (s *stubProductService) ListProducts(ctx context.Context, input products.ListProductsInput) (*products.ProductListResult, error) {
	s.listed = &input
	return &products.ProductListResult{Items: []products.ProductDTO{}}, nil
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func TestProductCreate(t *testing.T) {
	svc := &stubProductService{}
	rec, _ := serve(t, ProductCreate(svc, nil), http.MethodPost, "/products",
		strings.NewReader(`{"title":"  Mug ","description":"white","price":"249.50","currency":"INR"}`), nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Mug", svc.created.Title)

	rec, env := serve(t, ProductCreate(svc, nil), http.MethodPost, "/products", strings.NewReader(`{"price":"1"}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Details), "title")
}

func TestProductCreateTruncatesMultiByteTitle(t *testing.T) {
	svc := &stubProductService{}
	title := "a" + strings.Repeat("é", 150)
	rec, _ := serve(t, ProductCreate(svc, nil), http.MethodPost, "/products",
		strings.NewReader(`{"title":"`+title+`","price":"10","currency":"INR"}`), nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, utf8.ValidString(svc.created.Title))
	assert.LessOrEqual(t, len(svc.created.Title), 200)
}

func TestProductListCurrencyFilter(t *testing.T) {
	svc := &stubProductService{}

	rec, _ := serve(t, ProductList(svc, nil), http.MethodGet, "/products?currency=usd&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listed.Currency)
	assert.Equal(t, enums.Currency("USD"), *svc.listed.Currency)
	assert.Equal(t, 2, svc.listed.Pagination.Limit)

	rec, _ = serve(t, ProductList(svc, nil), http.MethodGet, "/products?currency=dollars", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductDeleteAndGet(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()

	rec, _ := serve(t, ProductDelete(svc, nil), http.MethodDelete, "/", nil, map[string]string{"productId": id.String()})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.deleted)

	svc.err = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	rec, _ = serve(t, ProductGet(svc, nil), http.MethodGet, "/", nil, map[string]string{"productId": id.String()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
