package catalog

import (
	"time"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PickerVariant struct {
	ID           primitive.ObjectID  `json:"id"`
	SKU          string              `json:"sku"`
	Name         string              `json:"name"`
	Availability VariantAvailability `json:"availability"`
	// attribute id (hex) -> value id (hex)
	Attributes map[string]string `json:"attributes"`
}

type PickerData struct {
	VariantAttributes []models.Attribute `json:"variantAttributes"`
	Variants          []PickerVariant    `json:"variants"`
}

// VariantPicker lists the variant attributes of p with only the values some
// variant actually uses, keeping the order the attribute defines them in.
func VariantPicker(p models.Product, attributes []models.Attribute, now time.Time) PickerData {
	used := map[string]map[string]bool{}
	variants := make([]PickerVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		for attrID, valueID := range v.Attributes {
			if used[attrID] == nil {
				used[attrID] = map[string]bool{}
			}
			used[attrID][valueID] = true
		}
		attrs := v.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		variants = append(variants, PickerVariant{
			ID:           v.ID,
			SKU:          v.SKU,
			Name:         v.Name,
			Availability: variantAvailability(p, v, now),
			Attributes:   attrs,
		})
	}

	picked := []models.Attribute{}
	for _, attr := range attributes {
		values := used[attr.ID.Hex()]
		if len(values) == 0 {
			continue
		}
		kept := attr
		kept.Values = nil
		for _, val := range attr.Values {
			if values[val.ID.Hex()] {
				kept.Values = append(kept.Values, val)
			}
		}
		if len(kept.Values) > 0 {
			picked = append(picked, kept)
		}
	}
	return PickerData{VariantAttributes: picked, Variants: variants}
}
