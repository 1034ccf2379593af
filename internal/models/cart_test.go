package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartSetLine(t *testing.T) {
	productID := primitive.NewObjectID()
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	var cart Cart
	cart.SetLine(productID, first, 2)
	cart.SetLine(productID, second, 1)
	assert.Equal(t, 3, cart.Quantity())

	cart.SetLine(productID, first, 5)
	assert.Equal(t, 5, cart.LineQuantity(first))
	assert.Len(t, cart.Lines, 2)

	cart.SetLine(productID, first, 0)
	assert.Equal(t, 0, cart.LineQuantity(first))
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Quantity())

	cart.SetLine(productID, first, 0)
	assert.Len(t, cart.Lines, 1)
}

func TestCartSetLineLeavesCopiesAlone(t *testing.T) {
	productID := primitive.NewObjectID()
	first, second, third := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	var cart Cart
	cart.SetLine(productID, first, 1)
	cart.SetLine(productID, second, 2)
	cart.SetLine(productID, third, 3)
	snapshot := cart

	cart.SetLine(productID, first, 0)
	cart.SetLine(productID, second, 7)
	assert.Equal(t, 10, cart.Quantity())

	assert.Len(t, snapshot.Lines, 3)
	assert.Equal(t, 6, snapshot.Quantity())
	assert.Equal(t, 2, snapshot.LineQuantity(second))
}
