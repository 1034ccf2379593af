package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type AttributeValue struct {
	ID   primitive.ObjectID `json:"id" bson:"id"`
	Name string             `json:"name" bson:"name"`
	Slug string             `json:"slug" bson:"slug"`
}

type Attribute struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `json:"name" bson:"name" validate:"required"`
	Slug   string             `json:"slug" bson:"slug"`
	Values []AttributeValue   `json:"values" bson:"values"`
}

func (a Attribute) Value(id primitive.ObjectID) (AttributeValue, bool) {
	for _, v := range a.Values {
		if v.ID == id {
			return v, true
		}
	}
	return AttributeValue{}, false
}

type ProductType struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name                string               `json:"name" bson:"name" validate:"required"`
	HasVariants         bool                 `json:"hasVariants" bson:"hasVariants"`
	ProductAttributeIDs []primitive.ObjectID `json:"productAttributeIds" bson:"productAttributeIds"`
	VariantAttributeIDs []primitive.ObjectID `json:"variantAttributeIds" bson:"variantAttributeIds"`
}

type Variant struct {
	ID            primitive.ObjectID `json:"id" bson:"id"`
	SKU           string             `json:"sku" bson:"sku"`
	Name          string             `json:"name" bson:"name"`
	PriceOverride *float64           `json:"priceOverride,omitempty" bson:"priceOverride,omitempty"`

	// Inventory
	Quantity          int `json:"quantity" bson:"quantity"`
	QuantityAllocated int `json:"quantityAllocated" bson:"quantityAllocated"`

	// attribute id (hex) -> value id (hex)
	Attributes map[string]string `json:"attributes" bson:"attributes"`
}

func (v Variant) QuantityAvailable() int {
	return max(v.Quantity-v.QuantityAllocated, 0)
}

func (v Variant) IsInStock() bool {
	return v.QuantityAvailable() > 0
}

// CheckQuantity reports ErrInsufficientStock when quantity cannot be sold.
func (v Variant) CheckQuantity(quantity int) error {
	if quantity > v.QuantityAvailable() {
		return fmt.Errorf("%w: only %d remaining in stock", ErrInsufficientStock, v.QuantityAvailable())
	}
	return nil
}

// ApplyStock shifts quantity and allocation by the given deltas. Neither may
// drop below zero.
func (v *Variant) ApplyStock(quantity, allocated int) error {
	if v.Quantity+quantity < 0 || v.QuantityAllocated+allocated < 0 {
		return ErrInsufficientStock
	}
	v.Quantity += quantity
	v.QuantityAllocated += allocated
	return nil
}

type ProductImage struct {
	ID        primitive.ObjectID `json:"id" bson:"id"`
	PublicID  string             `json:"publicId" bson:"publicId"`
	URL       string             `json:"url" bson:"url"`
	Alt       string             `json:"alt" bson:"alt"`
	SortOrder int                `json:"sortOrder" bson:"sortOrder"`
	// rendition name -> delivery URL
	Thumbnails map[string]string `json:"thumbnails,omitempty" bson:"thumbnails,omitempty"`
}

type Product struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Basic Info
	Name        string `json:"name" bson:"name" validate:"required,max=128"`
	Slug        string `json:"slug" bson:"slug"`
	Description string `json:"description" bson:"description"`

	// Categorization
	CategoryID    primitive.ObjectID `json:"categoryId" bson:"categoryId"`
	ProductTypeID primitive.ObjectID `json:"productTypeId" bson:"productTypeId"`

	// Pricing
	Price    float64 `json:"price" bson:"price" validate:"gte=0"`
	Currency string  `json:"currency" bson:"currency"`

	// Visibility
	IsPublished bool       `json:"isPublished" bson:"isPublished"`
	AvailableOn *time.Time `json:"availableOn,omitempty" bson:"availableOn"`

	Attributes map[string]string `json:"attributes" bson:"attributes"`
	Variants   []Variant         `json:"variants" bson:"variants"`
	Images     []ProductImage    `json:"images" bson:"images"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (p Product) String() string { return p.Name }

func (p Product) AbsoluteURL() string {
	return fmt.Sprintf("/products/%s-%s/", p.Slug, p.ID.Hex())
}

// IsAvailable reports whether the product's availability date has passed.
func (p Product) IsAvailable(now time.Time) bool {
	return p.AvailableOn == nil || !p.AvailableOn.After(now)
}

func (p Product) IsVisible(now time.Time) bool {
	return p.IsPublished && p.IsAvailable(now)
}

func (p Product) Variant(id primitive.ObjectID) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func (p Product) VariantPrice(v Variant) float64 {
	if v.PriceOverride != nil {
		return *v.PriceOverride
	}
	return p.Price
}

// DisplayName is the product name followed by the variant name, when it has one.
func (p Product) DisplayName(v Variant) string {
	if v.Name == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, v.Name)
}

func (p Product) Image(id primitive.ObjectID) (ProductImage, bool) {
	for _, img := range p.Images {
		if img.ID == id {
			return img, true
		}
	}
	return ProductImage{}, false
}
