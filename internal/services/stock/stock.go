// Package stock moves variant inventory between on-hand and allocated.
package stock

import (
	"context"
	"fmt"

	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mutation is a pair of deltas applied to a variant's quantity and allocation.
type Mutation struct {
	Name      string
	Quantity  int
	Allocated int
}

func Increase(q int) Mutation { return Mutation{Name: "increase", Quantity: q} }

// Decrease ships q units: they leave both the shelf and the allocation.
func Decrease(q int) Mutation { return Mutation{Name: "decrease", Quantity: -q, Allocated: -q} }

func Allocate(q int) Mutation { return Mutation{Name: "allocate", Allocated: q} }

func Deallocate(q int) Mutation { return Mutation{Name: "deallocate", Allocated: -q} }

// Apply mutates v in memory. It refuses to leave either counter negative.
func (m Mutation) Apply(v *models.Variant) error {
	return v.ApplyStock(m.Quantity, m.Allocated)
}

// Store persists a mutation atomically on the embedded variant.
type Store interface {
	AdjustVariantStock(ctx context.Context, productID, variantID primitive.ObjectID, quantity, allocated int) (models.Variant, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) apply(ctx context.Context, productID, variantID primitive.ObjectID, m Mutation) (models.Variant, error) {
	v, err := s.store.AdjustVariantStock(ctx, productID, variantID, m.Quantity, m.Allocated)
	if err != nil {
		return models.Variant{}, fmt.Errorf("%s stock of variant %s: %w", m.Name, variantID.Hex(), err)
	}
	logrus.WithFields(logrus.Fields{
		"variantId": variantID.Hex(),
		"op":        m.Name,
		"quantity":  v.Quantity,
		"allocated": v.QuantityAllocated,
	}).Debug("stock updated")
	return v, nil
}

func (s *Service) IncreaseStock(ctx context.Context, productID, variantID primitive.ObjectID, q int) (models.Variant, error) {
	return s.apply(ctx, productID, variantID, Increase(q))
}

func (s *Service) DecreaseStock(ctx context.Context, productID, variantID primitive.ObjectID, q int) (models.Variant, error) {
	return s.apply(ctx, productID, variantID, Decrease(q))
}

func (s *Service) AllocateStock(ctx context.Context, productID, variantID primitive.ObjectID, q int) (models.Variant, error) {
	return s.apply(ctx, productID, variantID, Allocate(q))
}

func (s *Service) DeallocateStock(ctx context.Context, productID, variantID primitive.ObjectID, q int) (models.Variant, error) {
	return s.apply(ctx, productID, variantID, Deallocate(q))
}

// AllocateLines reserves stock for every cart line. Lines already reserved
// are released again when a later line fails.
func (s *Service) AllocateLines(ctx context.Context, lines []models.CartLine) error {
	done := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if _, err := s.AllocateStock(ctx, l.ProductID, l.VariantID, l.Quantity); err != nil {
			for _, r := range done {
				if _, rerr := s.DeallocateStock(ctx, r.ProductID, r.VariantID, r.Quantity); rerr != nil {
					logrus.WithError(rerr).WithField("variantId", r.VariantID.Hex()).Error("failed to release allocation")
				}
			}
			return err
		}
		done = append(done, l)
	}
	return nil
}
