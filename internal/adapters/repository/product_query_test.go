package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProductQueryFilterEmpty(t *testing.T) {
	assert.Equal(t, bson.M{}, ProductQuery{}.Filter())
}

func TestProductQueryFilter(t *testing.T) {
	categoryID := primitive.NewObjectID()
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	minPrice, maxPrice := 5.0, 20.0

	q := ProductQuery{
		CategoryIDs: []primitive.ObjectID{categoryID},
		VisibleAt:   &now,
		MinPrice:    &minPrice,
		MaxPrice:    &maxPrice,
		Attributes:  []AttributeFilter{{AttributeID: "a1", ValueID: "v1"}},
		Search:      "shirt.",
	}
	filter := q.Filter()

	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{categoryID}}, filter["categoryId"])
	assert.Equal(t, true, filter["isPublished"])
	assert.Equal(t, bson.M{"$gte": 5.0, "$lte": 20.0}, filter["price"])
	assert.Equal(t, bson.M{"$regex": `shirt\.`, "$options": "i"}, filter["name"])

	and, ok := filter["$and"].([]bson.M)
	if assert.True(t, ok) && assert.Len(t, and, 2) {
		assert.Equal(t, bson.M{"$or": bson.A{
			bson.M{"availableOn": nil},
			bson.M{"availableOn": bson.M{"$lte": now}},
		}}, and[0])
		assert.Equal(t, bson.M{"$or": bson.A{
			bson.M{"attributes.a1": "v1"},
			bson.M{"variants.attributes.a1": "v1"},
		}}, and[1])
	}
}

func TestProductQueryOnlyMaxPrice(t *testing.T) {
	maxPrice := 20.0
	filter := ProductQuery{MaxPrice: &maxPrice}.Filter()
	assert.Equal(t, bson.M{"price": bson.M{"$lte": 20.0}}, filter)
}

func TestProductQuerySort(t *testing.T) {
	tests := []struct {
		sortBy string
		want   bson.D
	}{
		{"", bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		{"-price", bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}},
		{"updated_at", bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}}},
		{"aaa", bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProductQuery{SortBy: tt.sortBy}.Sort(), tt.sortBy)
	}
}

func TestValidSort(t *testing.T) {
	assert.True(t, ValidSort("name"))
	assert.True(t, ValidSort("-price"))
	assert.False(t, ValidSort("aaa"))
	assert.False(t, ValidSort("--price"))
}
