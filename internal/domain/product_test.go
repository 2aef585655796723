package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *Product {
	return &Product{
		ID:   "prod-1",
		Name: "Mango Pickle",
		Variants: []Variant{
			{ID: "var-250", Label: "250g", UnitPrice: decimal.NewFromInt(120), ListPrice: decimal.NewFromInt(150), Stock: 10},
			{ID: "var-500", Label: "500g", UnitPrice: decimal.NewFromInt(220), ListPrice: decimal.NewFromInt(260), Stock: 5, Default: true},
		},
	}
}

func TestResolveVariant_Found(t *testing.T) {
	p := testProduct()

	v, err := ResolveVariant(p, "var-500")
	require.NoError(t, err)
	assert.Equal(t, "500g", v.Label)
	assert.Equal(t, 5, v.Stock)
}

func TestResolveVariant_NotFound(t *testing.T) {
	p := testProduct()

	_, err := ResolveVariant(p, "var-999")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestResolveVariant_NilProduct(t *testing.T) {
	_, err := ResolveVariant(nil, "var-250")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestDefaultVariant(t *testing.T) {
	p := testProduct()

	v, err := DefaultVariant(p)
	require.NoError(t, err)
	assert.Equal(t, "var-500", v.ID)
}

func TestDefaultVariant_FallsBackToFirst(t *testing.T) {
	p := testProduct()
	p.Variants[1].Default = false

	v, err := DefaultVariant(p)
	require.NoError(t, err)
	assert.Equal(t, "var-250", v.ID)
}

func TestDefaultVariant_NoVariants(t *testing.T) {
	_, err := DefaultVariant(&Product{ID: "prod-1"})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}
