// Package catalog serves the storefront's product pages and category listings
// and keeps menus consistent when catalog objects go away.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidRef      = errors.New("malformed object reference")
	ErrInvalidCategory = errors.New("category does not exist")
	ErrInvalidType     = errors.New("product type does not exist")
	ErrInvalidSlug     = errors.New("slug must contain only lowercase letters, digits, hyphens and underscores")
)

// resolveSlug validates an explicit slug or derives one from name.
func resolveSlug(explicit, name string) (string, error) {
	slug := explicit
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if !utils.ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return slug, nil
}

// MenuLinks removes menu items that point at a deleted object.
type MenuLinks interface {
	DeleteLinkedItems(ctx context.Context, kind models.LinkKind, id primitive.ObjectID) (int64, error)
}

type Service struct {
	categories  repository.CategoryRepository
	collections repository.CollectionRepository
	pages       repository.PageRepository
	products    repository.ProductRepository
	attributes  repository.AttributeRepository
	menus       MenuLinks
}

func NewService(
	categories repository.CategoryRepository,
	collections repository.CollectionRepository,
	pages repository.PageRepository,
	products repository.ProductRepository,
	attributes repository.AttributeRepository,
	menus MenuLinks,
) *Service {
	return &Service{
		categories:  categories,
		collections: collections,
		pages:       pages,
		products:    products,
		attributes:  attributes,
		menus:       menus,
	}
}

// ParseRef splits "<slug>-<hex id>" into its parts. The slug may itself
// contain hyphens and slashes.
func ParseRef(ref string) (string, primitive.ObjectID, error) {
	ref = strings.Trim(ref, "/")
	i := strings.LastIndex(ref, "-")
	if i < 0 {
		return "", primitive.NilObjectID, ErrInvalidRef
	}
	id, err := primitive.ObjectIDFromHex(ref[i+1:])
	if err != nil {
		return "", primitive.NilObjectID, ErrInvalidRef
	}
	return ref[:i], id, nil
}

// Categories

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *primitive.ObjectID
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	var parent *models.Category
	if in.ParentID != nil {
		p, err := s.categories.GetCategory(ctx, *in.ParentID)
		if err != nil {
			return models.Category{}, fmt.Errorf("parent category: %w", err)
		}
		parent = &p
	}
	slug, err := resolveSlug(in.Slug, in.Name)
	if err != nil {
		return models.Category{}, err
	}
	c := models.NewChildCategory(parent, models.Category{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
	})
	return s.categories.CreateCategory(ctx, c)
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListCategories(ctx)
}

// DeleteCategory removes the category, its subcategories, their products and
// every menu item linking to any of them.
func (s *Service) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	root, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	below, err := s.categories.Descendants(ctx, id)
	if err != nil {
		return err
	}
	ids := []primitive.ObjectID{root.ID}
	for _, c := range below {
		ids = append(ids, c.ID)
	}

	removed, err := s.products.DeleteByCategories(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	if err := s.categories.DeleteCategories(ctx, ids); err != nil {
		return err
	}
	for _, cid := range ids {
		if _, err := s.menus.DeleteLinkedItems(ctx, models.LinkCategory, cid); err != nil {
			return fmt.Errorf("delete menu items: %w", err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"categoryId": id.Hex(),
		"categories": len(ids),
		"products":   removed,
	}).Info("category deleted")
	return nil
}

// Collections and pages

func (s *Service) CreateCollection(ctx context.Context, c models.Collection) (models.Collection, error) {
	slug, err := resolveSlug(c.Slug, c.Name)
	if err != nil {
		return models.Collection{}, err
	}
	c.Slug = slug
	if c.ProductIDs == nil {
		c.ProductIDs = []primitive.ObjectID{}
	}
	return s.collections.CreateCollection(ctx, c)
}

func (s *Service) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return s.collections.ListCollections(ctx)
}

func (s *Service) DeleteCollection(ctx context.Context, id primitive.ObjectID) error {
	if err := s.collections.DeleteCollection(ctx, id); err != nil {
		return err
	}
	_, err := s.menus.DeleteLinkedItems(ctx, models.LinkCollection, id)
	return err
}

func (s *Service) CreatePage(ctx context.Context, p models.Page) (models.Page, error) {
	slug, err := resolveSlug(p.Slug, p.Title)
	if err != nil {
		return models.Page{}, err
	}
	p.Slug = slug
	return s.pages.CreatePage(ctx, p)
}

func (s *Service) ListPages(ctx context.Context) ([]models.Page, error) {
	return s.pages.ListPages(ctx)
}

// VisiblePage returns the page with slug unless it is hidden or not yet
// available, in which case only staff may see it.
func (s *Service) VisiblePage(ctx context.Context, slug string, staff bool, now time.Time) (models.Page, error) {
	p, err := s.pages.GetPageBySlug(ctx, slug)
	if err != nil {
		return models.Page{}, err
	}
	visible := p.IsVisible && (p.AvailableOn == nil || !p.AvailableOn.After(now))
	if !visible && !staff {
		return models.Page{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *Service) DeletePage(ctx context.Context, id primitive.ObjectID) error {
	if err := s.pages.DeletePage(ctx, id); err != nil {
		return err
	}
	_, err := s.menus.DeleteLinkedItems(ctx, models.LinkPage, id)
	return err
}

// Attributes, product types and products

func (s *Service) CreateAttribute(ctx context.Context, a models.Attribute) (models.Attribute, error) {
	slug, err := resolveSlug(a.Slug, a.Name)
	if err != nil {
		return models.Attribute{}, err
	}
	a.Slug = slug
	for i := range a.Values {
		if a.Values[i].Slug, err = resolveSlug(a.Values[i].Slug, a.Values[i].Name); err != nil {
			return models.Attribute{}, err
		}
	}
	return s.attributes.CreateAttribute(ctx, a)
}

func (s *Service) ListAttributes(ctx context.Context) ([]models.Attribute, error) {
	return s.attributes.ListAttributes(ctx)
}

func (s *Service) CreateProductType(ctx context.Context, pt models.ProductType) (models.ProductType, error) {
	if pt.ProductAttributeIDs == nil {
		pt.ProductAttributeIDs = []primitive.ObjectID{}
	}
	if pt.VariantAttributeIDs == nil {
		pt.VariantAttributeIDs = []primitive.ObjectID{}
	}
	return s.attributes.CreateProductType(ctx, pt)
}

func (s *Service) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if _, err := s.categories.GetCategory(ctx, p.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Product{}, ErrInvalidCategory
		}
		return models.Product{}, err
	}
	if _, err := s.attributes.GetProductType(ctx, p.ProductTypeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Product{}, ErrInvalidType
		}
		return models.Product{}, err
	}
	slug, err := resolveSlug(p.Slug, p.Name)
	if err != nil {
		return models.Product{}, err
	}
	p.Slug = slug
	return s.products.CreateProduct(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	return s.products.DeleteProduct(ctx, id)
}

// Storefront views

type ProductDetails struct {
	Product      models.Product     `json:"product"`
	Availability AvailabilityStatus `json:"availability"`
	Price        string             `json:"price"`
	Picker       PickerData         `json:"picker"`
	CanonicalURL string             `json:"canonicalUrl"`
}

// ProductDetails loads a product page. Products that are not visible at now
// are reported as missing unless staff is set.
func (s *Service) ProductDetails(ctx context.Context, id primitive.ObjectID, staff bool, now time.Time) (ProductDetails, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return ProductDetails{}, err
	}
	if !p.IsVisible(now) && !staff {
		return ProductDetails{}, repository.ErrNotFound
	}

	var pt models.ProductType
	if !p.ProductTypeID.IsZero() {
		pt, err = s.attributes.GetProductType(ctx, p.ProductTypeID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return ProductDetails{}, err
		}
	}
	var attrs []models.Attribute
	if len(pt.VariantAttributeIDs) > 0 {
		attrs, err = s.attributes.GetAttributes(ctx, pt.VariantAttributeIDs)
		if err != nil {
			return ProductDetails{}, err
		}
	}

	return ProductDetails{
		Product:      p,
		Availability: ProductAvailability(p, pt, now),
		Price:        FormatPrice(p.Price, p.Currency),
		Picker:       VariantPicker(p, attrs, now),
		CanonicalURL: p.AbsoluteURL(),
	}, nil
}

type Listing struct {
	Category     models.Category   `json:"category"`
	Products     []models.Product  `json:"products"`
	FilterFields []FilterField     `json:"filterFields"`
	Errors       map[string]string `json:"errors,omitempty"`
	SortBy       string            `json:"sortBy"`
}

// CategoryListing returns the visible products of a category and all of its
// subcategories. An invalid filter yields no products and the filter errors.
func (s *Service) CategoryListing(ctx context.Context, category models.Category, values url.Values, now time.Time) (Listing, error) {
	below, err := s.categories.Descendants(ctx, category.ID)
	if err != nil {
		return Listing{}, err
	}
	ids := []primitive.ObjectID{category.ID}
	for _, c := range below {
		ids = append(ids, c.ID)
	}
	base := repository.ProductQuery{CategoryIDs: ids, VisibleAt: &now}

	all, err := s.products.ListProducts(ctx, base)
	if err != nil {
		return Listing{}, err
	}
	attrs, err := s.attributes.GetAttributes(ctx, attributeIDs(all))
	if err != nil {
		return Listing{}, err
	}

	filter := ParseProductFilter(values)
	listing := Listing{
		Category:     category,
		Products:     []models.Product{},
		FilterFields: FilterFields(attrs),
		SortBy:       filter.SortBy,
	}
	if !filter.Valid() {
		listing.Errors = filter.Errors
		return listing, nil
	}

	products, err := s.products.ListProducts(ctx, filter.Apply(base))
	if err != nil {
		return Listing{}, err
	}
	listing.Products = products
	return listing, nil
}

func (s *Service) GetCategory(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

func attributeIDs(products []models.Product) []primitive.ObjectID {
	seen := map[string]bool{}
	var ids []primitive.ObjectID
	add := func(hex string) {
		if seen[hex] {
			return
		}
		seen[hex] = true
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			ids = append(ids, id)
		}
	}
	for _, p := range products {
		for attrID := range p.Attributes {
			add(attrID)
		}
		for _, v := range p.Variants {
			for attrID := range v.Attributes {
				add(attrID)
			}
		}
	}
	return ids
}

// Dashboard lookups

type Choice struct {
	ID   primitive.ObjectID `json:"id"`
	Text string             `json:"text"`
}

// AvailableVariants lists variants of visible products whose product name or
// SKU contains q, labelled "<sku>, <product display>, <price>".
func (s *Service) AvailableVariants(ctx context.Context, q string, now time.Time) ([]Choice, error) {
	products, err := s.products.ListProducts(ctx, repository.ProductQuery{VisibleAt: &now})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	results := []Choice{}
	for _, p := range products {
		nameMatch := strings.Contains(strings.ToLower(p.Name), needle)
		for _, v := range p.Variants {
			if needle != "" && !nameMatch && !strings.Contains(strings.ToLower(v.SKU), needle) {
				continue
			}
			results = append(results, Choice{
				ID:   v.ID,
				Text: fmt.Sprintf("%s, %s, %s", v.SKU, p.DisplayName(v), FormatPrice(p.VariantPrice(v), p.Currency)),
			})
		}
	}
	return results, nil
}

func (s *Service) SearchProducts(ctx context.Context, q string) ([]Choice, error) {
	products, err := s.products.ListProducts(ctx, repository.ProductQuery{Search: strings.TrimSpace(q)})
	if err != nil {
		return nil, err
	}
	results := make([]Choice, 0, len(products))
	for _, p := range products {
		results = append(results, Choice{ID: p.ID, Text: p.Name})
	}
	return results, nil
}
