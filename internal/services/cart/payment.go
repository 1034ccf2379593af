package cart

import (
	"context"
	"errors"

	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEmptyCart = errors.New("cart is empty")

// Allocator reserves stock for the lines of a paid cart.
type Allocator interface {
	AllocateLines(ctx context.Context, lines []models.CartLine) error
}

// AwaitPayment records the payment intent on the cart and takes it out of the
// open state, so further edits start a new cart.
func (s *Service) AwaitPayment(ctx context.Context, cartID primitive.ObjectID, intentID string) error {
	return s.carts.SetPaymentIntent(ctx, cartID, intentID)
}

// CompletePayment marks the cart paid through intentID as ordered and
// allocates its stock. Only the notification that moves the cart to ordered
// allocates; repeated or concurrent ones are no-ops.
func (s *Service) CompletePayment(ctx context.Context, intentID string, stock Allocator) (models.Cart, error) {
	c, err := s.carts.GetCartByPaymentIntent(ctx, intentID)
	if err != nil {
		return models.Cart{}, err
	}
	if c.Status == models.CartStatusOrdered {
		return c, nil
	}
	previous := c.Status
	claimed, err := s.carts.TransitionStatus(ctx, c.ID, previous, models.CartStatusOrdered)
	if err != nil {
		return models.Cart{}, err
	}
	if !claimed {
		return s.carts.GetCartByPaymentIntent(ctx, intentID)
	}
	if err := stock.AllocateLines(ctx, c.Lines); err != nil {
		if _, rerr := s.carts.TransitionStatus(ctx, c.ID, models.CartStatusOrdered, previous); rerr != nil {
			logrus.WithError(rerr).WithField("cartId", c.ID.Hex()).Error("failed to restore cart status")
		}
		return models.Cart{}, err
	}
	c.Status = models.CartStatusOrdered
	logrus.WithFields(logrus.Fields{"cartId": c.ID.Hex(), "paymentIntent": intentID}).Info("cart ordered")
	return c, nil
}
