package memory

import (
	"context"
	"testing"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListProductsFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	category := primitive.NewObjectID()
	future := time.Now().Add(24 * time.Hour)

	for _, p := range []models.Product{
		{Name: "Mug", Price: 12, CategoryID: category, IsPublished: true},
		{Name: "Cap", Price: 20, CategoryID: category, IsPublished: true},
		{Name: "Hidden", Price: 5, CategoryID: category},
		{Name: "Soon", Price: 5, CategoryID: category, IsPublished: true, AvailableOn: &future},
		{Name: "Elsewhere", Price: 5, CategoryID: primitive.NewObjectID(), IsPublished: true},
	} {
		_, err := store.CreateProduct(ctx, p)
		require.NoError(t, err)
	}

	now := time.Now()
	got, err := store.ListProducts(ctx, repository.ProductQuery{
		CategoryIDs: []primitive.ObjectID{category},
		VisibleAt:   &now,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Cap", got[0].Name)
	assert.Equal(t, "Mug", got[1].Name)

	got, err = store.ListProducts(ctx, repository.ProductQuery{
		CategoryIDs: []primitive.ObjectID{category},
		VisibleAt:   &now,
		SortBy:      "-price",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cap", got[0].Name)

	ceiling := 15.0
	count, err := store.CountProducts(ctx, repository.ProductQuery{
		CategoryIDs: []primitive.ObjectID{category},
		VisibleAt:   &now,
		MaxPrice:    &ceiling,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAdjustVariantStockRejectsNegative(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p, err := store.CreateProduct(ctx, models.Product{
		Name:     "Shirt",
		Variants: []models.Variant{{SKU: "S1", Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = store.AdjustVariantStock(ctx, p.ID, p.Variants[0].ID, -4, 0)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	v, err := store.AdjustVariantStock(ctx, p.ID, p.Variants[0].ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, v.QuantityAvailable())

	_, err = store.AdjustVariantStock(ctx, p.ID, primitive.NewObjectID(), 1, 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
