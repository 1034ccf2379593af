// Package cart resolves the shopper's cart and edits its lines.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxLineQuantity = 50

// FieldError is a form error tied to one input field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func (e *FieldError) Unwrap() error { return e.Err }

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownVariant  = errors.New("unknown variant")
)

// Identity is who is asking for a cart. UserID is set for authenticated
// requests; Token carries the value of the cart cookie, if any.
type Identity struct {
	UserID *primitive.ObjectID
	Email  string
	Token  string
}

func (i Identity) Authenticated() bool { return i.UserID != nil }

type Service struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	now      func() time.Time
}

func NewService(carts repository.CartRepository, products repository.ProductRepository) *Service {
	return &Service{carts: carts, products: products, now: time.Now}
}

// Find returns the open cart for id. An authenticated user only ever gets
// their own cart; the cookie is ignored. An anonymous visitor gets the cart
// named by the cookie only while it is open and belongs to nobody.
func (s *Service) Find(ctx context.Context, id Identity) (models.Cart, error) {
	if id.Authenticated() {
		return s.carts.GetOpenCartByUser(ctx, *id.UserID)
	}
	if id.Token == "" {
		return models.Cart{}, repository.ErrNotFound
	}
	return s.carts.GetOpenAnonymousCart(ctx, id.Token)
}

// Current returns the cart for id, or an unsaved empty one.
func (s *Service) Current(ctx context.Context, id Identity) (models.Cart, bool, error) {
	c, err := s.Find(ctx, id)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Cart{}, false, err
	}
	return newCart(id), false, nil
}

// GetOrCreate returns the cart for id, saving a new one when there is none.
func (s *Service) GetOrCreate(ctx context.Context, id Identity) (models.Cart, error) {
	c, saved, err := s.Current(ctx, id)
	if err != nil || saved {
		return c, err
	}
	created, err := s.carts.CreateCart(ctx, c)
	if err != nil {
		return models.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"cartId":        created.ID.Hex(),
		"authenticated": id.Authenticated(),
	}).Info("cart created")
	return created, nil
}

func newCart(id Identity) models.Cart {
	c := models.Cart{
		Token:  uuid.New().String(),
		Status: models.CartStatusOpen,
		Lines:  []models.CartLine{},
	}
	if id.Authenticated() {
		uid := *id.UserID
		c.UserID = &uid
		c.UserEmail = id.Email
	}
	return c
}

type AddInput struct {
	// ProductID, when set, restricts VariantID to that product's variants.
	ProductID primitive.ObjectID
	VariantID string
	Quantity  int
}

// AddVariant adds quantity units of a variant to the cart of id, summing with
// any existing line. Nothing is saved when the input or the stock check fails.
func (s *Service) AddVariant(ctx context.Context, id Identity, in AddInput) (models.Cart, error) {
	if in.Quantity < 1 || in.Quantity > MaxLineQuantity {
		return models.Cart{}, &FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Ensure this value is between 1 and %d.", MaxLineQuantity),
			Err:     ErrInvalidQuantity,
		}
	}
	product, variant, err := s.variant(ctx, in.VariantID)
	if err != nil {
		return models.Cart{}, err
	}
	if !in.ProductID.IsZero() && in.ProductID != product.ID {
		return models.Cart{}, &FieldError{Field: "variant", Message: "Select a valid choice.", Err: ErrUnknownVariant}
	}

	current, _, err := s.Current(ctx, id)
	if err != nil {
		return models.Cart{}, err
	}
	total := current.LineQuantity(variant.ID) + in.Quantity
	if err := variant.CheckQuantity(total); err != nil {
		return models.Cart{}, &FieldError{Field: "quantity", Message: err.Error(), Err: err}
	}

	c, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return models.Cart{}, err
	}
	c.SetLine(product.ID, variant.ID, c.LineQuantity(variant.ID)+in.Quantity)
	if err := s.carts.SaveCart(ctx, c); err != nil {
		return models.Cart{}, err
	}
	return c, nil
}

// UpdateLine sets the quantity of a line; zero removes it.
func (s *Service) UpdateLine(ctx context.Context, id Identity, variantID string, quantity int) (models.Cart, error) {
	if quantity < 0 || quantity > MaxLineQuantity {
		return models.Cart{}, &FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Ensure this value is between 0 and %d.", MaxLineQuantity),
			Err:     ErrInvalidQuantity,
		}
	}
	c, err := s.Find(ctx, id)
	if err != nil {
		return models.Cart{}, err
	}
	vid, err := primitive.ObjectIDFromHex(variantID)
	if err != nil || c.LineQuantity(vid) == 0 {
		return models.Cart{}, repository.ErrNotFound
	}

	var productID primitive.ObjectID
	if quantity > 0 {
		product, variant, err := s.variant(ctx, variantID)
		if err != nil {
			return models.Cart{}, err
		}
		if err := variant.CheckQuantity(quantity); err != nil {
			return models.Cart{}, &FieldError{Field: "quantity", Message: err.Error(), Err: err}
		}
		productID = product.ID
	}
	c.SetLine(productID, vid, quantity)
	if err := s.carts.SaveCart(ctx, c); err != nil {
		return models.Cart{}, err
	}
	return c, nil
}

func (s *Service) variant(ctx context.Context, variantID string) (models.Product, models.Variant, error) {
	unknown := &FieldError{Field: "variant", Message: "Select a valid choice.", Err: ErrUnknownVariant}
	vid, err := primitive.ObjectIDFromHex(variantID)
	if err != nil {
		return models.Product{}, models.Variant{}, unknown
	}
	product, err := s.products.FindByVariant(ctx, vid)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Product{}, models.Variant{}, unknown
	}
	if err != nil {
		return models.Product{}, models.Variant{}, err
	}
	if !product.IsVisible(s.now()) {
		return models.Product{}, models.Variant{}, unknown
	}
	variant, _ := product.Variant(vid)
	return product, variant, nil
}

// AssignAnonymousCart hands the cookie cart to user after login, unless the
// user already has an open cart of their own.
func (s *Service) AssignAnonymousCart(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return nil
	}
	_, err := s.carts.GetOpenCartByUser(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	anon, err := s.carts.GetOpenAnonymousCart(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.carts.AssignUser(ctx, anon.ID, user); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"cartId": anon.ID.Hex(), "userId": user.ID.Hex()}).Info("anonymous cart assigned")
	return nil
}

type LineView struct {
	models.CartLine
	ProductName string  `json:"productName"`
	SKU         string  `json:"sku"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
	TotalLabel  string  `json:"totalLabel"`
}

type View struct {
	models.Cart
	Lines      []LineView `json:"lines"`
	Quantity   int        `json:"quantity"`
	Total      float64    `json:"total"`
	Currency   string     `json:"currency"`
	TotalLabel string     `json:"totalLabel"`
}

// Summarize prices every line of c. Lines whose variant no longer exists are skipped.
func (s *Service) Summarize(ctx context.Context, c models.Cart, defaultCurrency string) (View, error) {
	view := View{Cart: c, Lines: []LineView{}, Quantity: c.Quantity(), Currency: defaultCurrency}
	for _, l := range c.Lines {
		product, err := s.products.GetProduct(ctx, l.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return View{}, err
		}
		variant, ok := product.Variant(l.VariantID)
		if !ok {
			continue
		}
		if product.Currency != "" {
			view.Currency = product.Currency
		}
		unit := product.VariantPrice(variant)
		line := LineView{
			CartLine:    l,
			ProductName: product.DisplayName(variant),
			SKU:         variant.SKU,
			UnitPrice:   unit,
			Total:       unit * float64(l.Quantity),
		}
		line.TotalLabel = catalog.FormatPrice(line.Total, view.Currency)
		view.Lines = append(view.Lines, line)
		view.Total += line.Total
	}
	view.TotalLabel = catalog.FormatPrice(view.Total, view.Currency)
	return view, nil
}
