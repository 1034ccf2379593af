package catalog

import (
	"time"

	"github.com/developia-II/storefront-backend/internal/models"
)

type AvailabilityStatus string

const (
	NotPublished     AvailabilityStatus = "not-published"
	VariantsMissing  AvailabilityStatus = "variants-missing"
	OutOfStock       AvailabilityStatus = "out-of-stock"
	NotYetAvailable  AvailabilityStatus = "not-yet-available"
	ReadyForPurchase AvailabilityStatus = "ready-for-purchase"
)

// ProductAvailability reports why a product can or cannot be bought at now.
// Checks run in a fixed order and the first failing one wins.
func ProductAvailability(p models.Product, pt models.ProductType, now time.Time) AvailabilityStatus {
	switch {
	case !p.IsPublished:
		return NotPublished
	case pt.HasVariants && len(p.Variants) == 0:
		return VariantsMissing
	case !inStock(p):
		return OutOfStock
	case !p.IsAvailable(now):
		return NotYetAvailable
	}
	return ReadyForPurchase
}

func inStock(p models.Product) bool {
	for _, v := range p.Variants {
		if v.IsInStock() {
			return true
		}
	}
	return false
}

// VariantAvailability is the per-variant view sent to the storefront.
type VariantAvailability struct {
	Available         bool   `json:"available"`
	QuantityAvailable int    `json:"quantityAvailable"`
	Price             string `json:"price"`
}

func variantAvailability(p models.Product, v models.Variant, now time.Time) VariantAvailability {
	return VariantAvailability{
		Available:         p.IsVisible(now) && v.IsInStock(),
		QuantityAvailable: v.QuantityAvailable(),
		Price:             FormatPrice(p.VariantPrice(v), p.Currency),
	}
}
