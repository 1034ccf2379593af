package repository

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortFields maps public sort keys onto document fields.
var SortFields = map[string]string{
	"name":       "name",
	"price":      "price",
	"updated_at": "updatedAt",
}

// ValidSort accepts a sort key optionally prefixed with "-" for descending order.
func ValidSort(key string) bool {
	_, ok := SortFields[strings.TrimPrefix(key, "-")]
	return ok
}

type AttributeFilter struct {
	AttributeID string
	ValueID     string
}

type ProductQuery struct {
	CategoryIDs []primitive.ObjectID
	// VisibleAt restricts results to products published and available at that time.
	VisibleAt  *time.Time
	MinPrice   *float64
	MaxPrice   *float64
	Attributes []AttributeFilter
	Search     string
	// WithVariants keeps only products that have at least one variant.
	WithVariants bool
	SortBy       string
	Limit        int64
	Skip         int64
}

func (q ProductQuery) Filter() bson.M {
	filter := bson.M{}
	and := []bson.M{}

	if len(q.CategoryIDs) > 0 {
		filter["categoryId"] = bson.M{"$in": q.CategoryIDs}
	}
	if q.VisibleAt != nil {
		filter["isPublished"] = true
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"availableOn": nil},
			bson.M{"availableOn": bson.M{"$lte": *q.VisibleAt}},
		}})
	}

	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	// a product matches on its own attributes or on any of its variants
	for _, a := range q.Attributes {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"attributes." + a.AttributeID: a.ValueID},
			bson.M{"variants.attributes." + a.AttributeID: a.ValueID},
		}})
	}

	if q.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	if q.WithVariants {
		filter["variants.0"] = bson.M{"$exists": true}
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

func (q ProductQuery) Sort() bson.D {
	key := q.SortBy
	if !ValidSort(key) {
		key = "name"
	}
	direction := 1
	if strings.HasPrefix(key, "-") {
		direction = -1
	}
	field := SortFields[strings.TrimPrefix(key, "-")]
	return bson.D{{Key: field, Value: direction}, {Key: "_id", Value: 1}}
}
