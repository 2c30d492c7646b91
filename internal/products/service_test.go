package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartline/cartline-backend/pkg/config"
	"github.com/cartline/cartline-backend/pkg/currency"
	"github.com/cartline/cartline-backend/pkg/enums"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
	"github.com/cartline/cartline-backend/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	converter, err := currency.NewStaticConverter(config.CurrencyConfig{
		Reference: "INR",
		Rates:     map[string]string{"USD": "83"},
	})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(openTestDB(t)), converter)
	require.NoError(t, err)
	return svc
}

func TestCreateProduct(t *testing.T) {
	svc := newTestService(t)

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:    "  Steel Mug ",
		Price:    "12.5",
		Currency: "usd",
	})
	require.NoError(t, err)
	assert.Equal(t, "Steel Mug", dto.Title)
	assert.Equal(t, "12.50", dto.Price.String())
	assert.Equal(t, enums.CurrencyUSD, dto.Currency)

	got, err := svc.GetProduct(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t)

	cases := map[string]CreateProductInput{
		"missing title":      {Price: "1", Currency: "INR"},
		"bad price":          {Title: "x", Price: "abc", Currency: "INR"},
		"negative price":     {Title: "x", Price: "-1", Currency: "INR"},
		"three decimals":     {Title: "x", Price: "1.005", Currency: "INR"},
		"unknown currency":   {Title: "x", Price: "1", Currency: "JPY"},
		"malformed currency": {Title: "x", Price: "1", Currency: "rupees"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), in)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestListProductsBuildsCursor(t *testing.T) {
	svc := newTestService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.CreateProduct(context.Background(), CreateProductInput{Title: "p", Price: "1", Currency: "INR"})
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(context.Background(), ListProductsInput{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.NextCursor)

	_, err = svc.ListProducts(context.Background(), ListProductsInput{Pagination: pagination.Params{Cursor: "%%%"}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestService(t)
	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{Title: "p", Price: "1", Currency: "INR"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), dto.ID))

	_, err = svc.GetProduct(context.Background(), dto.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.HasCode(svc.DeleteProduct(context.Background(), uuid.New()), pkgerrors.CodeNotFound))
}
