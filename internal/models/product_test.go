package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVariantQuantityAvailable(t *testing.T) {
	assert.Equal(t, 20, Variant{Quantity: 100, QuantityAllocated: 80}.QuantityAvailable())
	assert.Equal(t, 0, Variant{Quantity: 10, QuantityAllocated: 30}.QuantityAvailable())
	assert.False(t, Variant{Quantity: 5, QuantityAllocated: 5}.IsInStock())
}

func TestVariantCheckQuantity(t *testing.T) {
	v := Variant{Quantity: 10, QuantityAllocated: 7}
	require.NoError(t, v.CheckQuantity(3))
	assert.ErrorIs(t, v.CheckQuantity(4), ErrInsufficientStock)
}

func TestVariantApplyStockRejectsNegative(t *testing.T) {
	v := Variant{Quantity: 10, QuantityAllocated: 5}
	assert.ErrorIs(t, v.ApplyStock(-11, 0), ErrInsufficientStock)
	assert.ErrorIs(t, v.ApplyStock(0, -6), ErrInsufficientStock)
	assert.Equal(t, 10, v.Quantity)
	assert.Equal(t, 5, v.QuantityAllocated)
}

func TestProductVisibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(7 * 24 * time.Hour)
	earlier := now.Add(-time.Hour)

	assert.True(t, Product{IsPublished: true}.IsVisible(now))
	assert.True(t, Product{IsPublished: true, AvailableOn: &earlier}.IsVisible(now))
	assert.False(t, Product{IsPublished: true, AvailableOn: &later}.IsVisible(now))
	assert.False(t, Product{IsPublished: false}.IsVisible(now))
}

func TestProductVariantPriceAndDisplay(t *testing.T) {
	override := 12.5
	p := Product{Name: "Test product", Price: 10}
	plain := Variant{ID: primitive.NewObjectID(), SKU: "123"}
	named := Variant{ID: primitive.NewObjectID(), SKU: "124", Name: "XL", PriceOverride: &override}

	assert.Equal(t, 10.0, p.VariantPrice(plain))
	assert.Equal(t, 12.5, p.VariantPrice(named))
	assert.Equal(t, "Test product", p.DisplayName(plain))
	assert.Equal(t, "Test product (XL)", p.DisplayName(named))
}

func TestProductAbsoluteURL(t *testing.T) {
	id := primitive.NewObjectID()
	p := Product{ID: id, Slug: "test-product"}
	assert.Equal(t, "/products/test-product-"+id.Hex()+"/", p.AbsoluteURL())
}
