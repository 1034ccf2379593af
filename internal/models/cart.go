package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartStatus string

const (
	CartStatusOpen              CartStatus = "open"
	CartStatusSaved             CartStatus = "saved"
	CartStatusWaitingForPayment CartStatus = "payment"
	CartStatusOrdered           CartStatus = "ordered"
	CartStatusCheckedOut        CartStatus = "checked_out"
	CartStatusCanceled          CartStatus = "canceled"
)

type CartLine struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	VariantID primitive.ObjectID `json:"variantId" bson:"variantId"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Token     string              `json:"token" bson:"token"`
	UserID    *primitive.ObjectID `json:"userId,omitempty" bson:"userId"`
	UserEmail string              `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	Status    CartStatus          `json:"status" bson:"status"`
	Lines     []CartLine          `json:"lines" bson:"lines"`

	PaymentIntentID string `json:"-" bson:"paymentIntentId,omitempty"`

	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	LastStatusChange time.Time `json:"lastStatusChange" bson:"lastStatusChange"`
}

func (c Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

// Quantity is the number of units across all lines.
func (c Cart) Quantity() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

func (c Cart) LineQuantity(variantID primitive.ObjectID) int {
	for _, l := range c.Lines {
		if l.VariantID == variantID {
			return l.Quantity
		}
	}
	return 0
}

// SetLine stores quantity for the variant, removing the line when it drops to
// zero. Lines is replaced, never written through, so copies of c are unaffected.
func (c *Cart) SetLine(productID, variantID primitive.ObjectID, quantity int) {
	i := slices.IndexFunc(c.Lines, func(l CartLine) bool { return l.VariantID == variantID })
	switch {
	case i >= 0 && quantity <= 0:
		c.Lines = slices.Delete(slices.Clone(c.Lines), i, i+1)
	case i >= 0:
		lines := slices.Clone(c.Lines)
		lines[i].Quantity = quantity
		c.Lines = lines
	case quantity > 0:
		c.Lines = append(slices.Clip(c.Lines), CartLine{ProductID: productID, VariantID: variantID, Quantity: quantity})
	}
}
