package memory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
)

// Matches evaluates q against p the way ProductQuery.Filter does in Mongo.
func Matches(q repository.ProductQuery, p models.Product) bool {
	if len(q.CategoryIDs) > 0 && !slices.Contains(q.CategoryIDs, p.CategoryID) {
		return false
	}
	if q.VisibleAt != nil && !p.IsVisible(*q.VisibleAt) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	for _, a := range q.Attributes {
		if !hasAttribute(p, a) {
			return false
		}
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	if q.WithVariants && len(p.Variants) == 0 {
		return false
	}
	return true
}

func hasAttribute(p models.Product, a repository.AttributeFilter) bool {
	if p.Attributes[a.AttributeID] == a.ValueID {
		return true
	}
	for _, v := range p.Variants {
		if v.Attributes[a.AttributeID] == a.ValueID {
			return true
		}
	}
	return false
}

func sortProducts(products []models.Product, key string) {
	if !repository.ValidSort(key) {
		key = "name"
	}
	desc := strings.HasPrefix(key, "-")
	field := strings.TrimPrefix(key, "-")

	slices.SortStableFunc(products, func(a, b models.Product) int {
		var c int
		switch field {
		case "price":
			c = cmp.Compare(a.Price, b.Price)
		case "updated_at":
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			c = strings.Compare(a.Name, b.Name)
		}
		if desc {
			c = -c
		}
		return cmp.Or(c, strings.Compare(a.ID.Hex(), b.ID.Hex()))
	})
}
