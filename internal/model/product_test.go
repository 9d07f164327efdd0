package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVariantProduct(t *testing.T) {
	p := Product{
		Name:        "Tee",
		Price:       499,
		Stock:       10,
		HasVariants: true,
		Variants: []ProductVariant{
			{Name: "S", Price: 499, Stock: 4},
			{Name: "M", Price: 549, Stock: 6},
		},
	}

	p.Normalize()

	// Price and stock live on the variants, not the product.
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Stock)
	assert.Len(t, p.Variants, 2)
}

func TestNormalizeSimpleProduct(t *testing.T) {
	p := Product{
		Name:  "Mug",
		Price: 199,
		Stock: 25,
		Variants: []ProductVariant{
			{Name: "stale", Price: 99},
		},
	}

	p.Normalize()

	assert.Equal(t, 199.0, p.Price)
	assert.Equal(t, 25, p.Stock)
	// Leftover variants on a non-variant product are dropped.
	assert.Nil(t, p.Variants)
}

func TestNormalizeVariantFlagWithoutVariants(t *testing.T) {
	p := Product{Name: "Tee", Price: 499, Stock: 10, HasVariants: true}

	p.Normalize()

	// No variants to carry the price, so the product keeps its own.
	assert.Equal(t, 499.0, p.Price)
	assert.Equal(t, 10, p.Stock)
}
