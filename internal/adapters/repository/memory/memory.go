// Package memory holds map-backed implementations of the repository
// interfaces. They keep the same error contract as the Mongo ones and are
// used by service and handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store implements every repository interface over one lock.
type Store struct {
	mu sync.Mutex

	menus       map[primitive.ObjectID]models.Menu
	items       map[primitive.ObjectID]models.MenuItem
	categories  map[primitive.ObjectID]models.Category
	collections map[primitive.ObjectID]models.Collection
	pages       map[primitive.ObjectID]models.Page
	attributes  map[primitive.ObjectID]models.Attribute
	types       map[primitive.ObjectID]models.ProductType
	products    map[primitive.ObjectID]models.Product
	carts       map[primitive.ObjectID]models.Cart
	users       map[primitive.ObjectID]models.User
}

func NewStore() *Store {
	return &Store{
		menus:       map[primitive.ObjectID]models.Menu{},
		items:       map[primitive.ObjectID]models.MenuItem{},
		categories:  map[primitive.ObjectID]models.Category{},
		collections: map[primitive.ObjectID]models.Collection{},
		pages:       map[primitive.ObjectID]models.Page{},
		attributes:  map[primitive.ObjectID]models.Attribute{},
		types:       map[primitive.ObjectID]models.ProductType{},
		products:    map[primitive.ObjectID]models.Product{},
		carts:       map[primitive.ObjectID]models.Cart{},
		users:       map[primitive.ObjectID]models.User{},
	}
}

var (
	_ repository.MenuRepository       = (*Store)(nil)
	_ repository.CategoryRepository   = (*Store)(nil)
	_ repository.CollectionRepository = (*Store)(nil)
	_ repository.PageRepository       = (*Store)(nil)
	_ repository.AttributeRepository  = (*Store)(nil)
	_ repository.ProductRepository    = (*Store)(nil)
	_ repository.CartRepository       = (*Store)(nil)
	_ repository.UserRepository       = (*Store)(nil)
)

func get[T any](m map[primitive.ObjectID]T, id primitive.ObjectID) (T, error) {
	v, ok := m[id]
	if !ok {
		var zero T
		return zero, repository.ErrNotFound
	}
	return v, nil
}

func pick[T any](m map[primitive.ObjectID]T, ids []primitive.ObjectID) []T {
	out := []T{}
	for _, id := range ids {
		if v, ok := m[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func values[T any](m map[primitive.ObjectID]T, id func(T) primitive.ObjectID) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		return strings.Compare(id(a).Hex(), id(b).Hex())
	})
	return out
}

// Menus

func (s *Store) CreateMenu(_ context.Context, menu models.Menu) (models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.menus {
		if m.Slug == menu.Slug {
			return models.Menu{}, repository.ErrDuplicate
		}
	}
	now := time.Now()
	menu.ID = primitive.NewObjectID()
	menu.CreatedAt, menu.UpdatedAt = now, now
	s.menus[menu.ID] = menu
	return menu, nil
}

func (s *Store) GetMenu(_ context.Context, id primitive.ObjectID) (models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.menus, id)
}

func (s *Store) GetMenuBySlug(_ context.Context, slug string) (models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.menus {
		if m.Slug == slug {
			return m, nil
		}
	}
	return models.Menu{}, repository.ErrNotFound
}

func (s *Store) ListMenus(_ context.Context) ([]models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := values(s.menus, func(m models.Menu) primitive.ObjectID { return m.ID })
	slices.SortFunc(out, func(a, b models.Menu) int { return strings.Compare(a.Slug, b.Slug) })
	return out, nil
}

func (s *Store) DeleteMenu(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.menus, id)
	for itemID, it := range s.items {
		if it.MenuID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *Store) CreateItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	item.ID = primitive.NewObjectID()
	item.CreatedAt, item.UpdatedAt = now, now
	s.items[item.ID] = item
	return item, nil
}

func (s *Store) GetItem(_ context.Context, id primitive.ObjectID) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.items, id)
}

func (s *Store) ListItems(_ context.Context, menuID primitive.ObjectID) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MenuItem{}
	for _, it := range s.items {
		if it.MenuID == menuID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b models.MenuItem) int {
		return cmp.Or(cmp.Compare(a.Order(), b.Order()), strings.Compare(a.ID.Hex(), b.ID.Hex()))
	})
	return out, nil
}

func (s *Store) MaxSiblingSortOrder(_ context.Context, menuID primitive.ObjectID, parentID *primitive.ObjectID) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *int
	for _, it := range s.items {
		if it.MenuID != menuID || it.SortOrder == nil {
			continue
		}
		if (it.ParentID == nil) != (parentID == nil) {
			continue
		}
		if parentID != nil && *it.ParentID != *parentID {
			continue
		}
		if best == nil || *it.SortOrder > *best {
			v := *it.SortOrder
			best = &v
		}
	}
	return best, nil
}

func (s *Store) UpdateItem(_ context.Context, item models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.SortOrder = stored.SortOrder
	item.UpdatedAt = time.Now()
	s.items[item.ID] = item
	return nil
}

func (s *Store) SetSortOrders(_ context.Context, orders map[primitive.ObjectID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, order := range orders {
		it, ok := s.items[id]
		if !ok {
			continue
		}
		o := order
		it.SortOrder = &o
		s.items[id] = it
	}
	return nil
}

func (s *Store) DeleteItems(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) FindItemsLinkedTo(_ context.Context, kind models.LinkKind, id primitive.ObjectID) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MenuItem{}
	for _, it := range s.items {
		var ref *primitive.ObjectID
		switch kind {
		case models.LinkCategory:
			ref = it.CategoryID
		case models.LinkCollection:
			ref = it.CollectionID
		case models.LinkPage:
			ref = it.PageID
		}
		if ref != nil && *ref == id {
			out = append(out, it)
		}
	}
	return out, nil
}

// Categories, collections and pages

func (s *Store) CreateCategory(_ context.Context, c models.Category) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Slug == c.Slug && sameID(other.ParentID, c.ParentID) {
			return models.Category{}, repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.categories, id)
}

func (s *Store) GetCategories(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pick(s.categories, ids), nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := values(s.categories, func(c models.Category) primitive.ObjectID { return c.ID })
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.Path(), b.Path()) })
	return out, nil
}

func (s *Store) Descendants(_ context.Context, id primitive.ObjectID) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Category{}
	for _, c := range values(s.categories, func(c models.Category) primitive.ObjectID { return c.ID }) {
		if slices.Contains(c.Ancestors, id) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) DeleteCategories(_ context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.categories, id)
	}
	return nil
}

func (s *Store) CreateCollection(_ context.Context, c models.Collection) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	s.collections[c.ID] = c
	return c, nil
}

func (s *Store) GetCollection(_ context.Context, id primitive.ObjectID) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.collections, id)
}

func (s *Store) GetCollections(_ context.Context, ids []primitive.ObjectID) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pick(s.collections, ids), nil
}

func (s *Store) ListCollections(_ context.Context) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.collections, func(c models.Collection) primitive.ObjectID { return c.ID }), nil
}

func (s *Store) DeleteCollection(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.collections, id)
	return nil
}

func (s *Store) CreatePage(_ context.Context, p models.Page) (models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.pages {
		if other.Slug == p.Slug {
			return models.Page{}, repository.ErrDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	s.pages[p.ID] = p
	return p, nil
}

func (s *Store) GetPage(_ context.Context, id primitive.ObjectID) (models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.pages, id)
}

func (s *Store) GetPageBySlug(_ context.Context, slug string) (models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Page{}, repository.ErrNotFound
}

func (s *Store) GetPages(_ context.Context, ids []primitive.ObjectID) ([]models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pick(s.pages, ids), nil
}

func (s *Store) ListPages(_ context.Context) ([]models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.pages, func(p models.Page) primitive.ObjectID { return p.ID }), nil
}

func (s *Store) DeletePage(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.pages, id)
	return nil
}

// Attributes and product types

func (s *Store) CreateAttribute(_ context.Context, attr models.Attribute) (models.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attr.ID = primitive.NewObjectID()
	for i := range attr.Values {
		if attr.Values[i].ID.IsZero() {
			attr.Values[i].ID = primitive.NewObjectID()
		}
	}
	s.attributes[attr.ID] = attr
	return attr, nil
}

func (s *Store) GetAttributes(_ context.Context, ids []primitive.ObjectID) ([]models.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pick(s.attributes, ids), nil
}

func (s *Store) ListAttributes(_ context.Context) ([]models.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.attributes, func(a models.Attribute) primitive.ObjectID { return a.ID }), nil
}

func (s *Store) CreateProductType(_ context.Context, pt models.ProductType) (models.ProductType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt.ID = primitive.NewObjectID()
	s.types[pt.ID] = pt
	return pt, nil
}

func (s *Store) GetProductType(_ context.Context, id primitive.ObjectID) (models.ProductType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.types, id)
}

// Products

func (s *Store) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Attributes == nil {
		p.Attributes = map[string]string{}
	}
	if p.Variants == nil {
		p.Variants = []models.Variant{}
	}
	if p.Images == nil {
		p.Images = []models.ProductImage{}
	}
	for i := range p.Variants {
		if p.Variants[i].ID.IsZero() {
			p.Variants[i].ID = primitive.NewObjectID()
		}
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.products, id)
}

func (s *Store) FindByVariant(_ context.Context, variantID primitive.ObjectID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if _, ok := p.Variant(variantID); ok {
			return p, nil
		}
	}
	return models.Product{}, repository.ErrNotFound
}

func (s *Store) ListProducts(_ context.Context, q repository.ProductQuery) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.match(q)
	if q.Skip > 0 {
		out = out[min(int(q.Skip), len(out)):]
	}
	if q.Limit > 0 && int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) CountProducts(_ context.Context, q repository.ProductQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.match(q))), nil
}

func (s *Store) match(q repository.ProductQuery) []models.Product {
	out := []models.Product{}
	for _, p := range s.products {
		if Matches(q, p) {
			out = append(out, p)
		}
	}
	sortProducts(out, q.SortBy)
	return out
}

func (s *Store) AdjustVariantStock(_ context.Context, productID, variantID primitive.ObjectID, quantity, allocated int) (models.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return models.Variant{}, repository.ErrNotFound
	}
	for i := range p.Variants {
		if p.Variants[i].ID != variantID {
			continue
		}
		v := p.Variants[i]
		if err := v.ApplyStock(quantity, allocated); err != nil {
			return models.Variant{}, err
		}
		variants := slices.Clone(p.Variants)
		variants[i] = v
		p.Variants = variants
		s.products[productID] = p
		return v, nil
	}
	return models.Variant{}, repository.ErrNotFound
}

func (s *Store) AddImage(_ context.Context, productID primitive.ObjectID, image models.ProductImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Images = append(slices.Clone(p.Images), image)
	s.products[productID] = p
	return nil
}

func (s *Store) SetImageThumbnails(_ context.Context, productID, imageID primitive.ObjectID, thumbnails map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	images := slices.Clone(p.Images)
	for i := range images {
		if images[i].ID == imageID {
			images[i].Thumbnails = thumbnails
			p.Images = images
			s.products[productID] = p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Store) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) DeleteByCategories(_ context.Context, categoryIDs []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.products {
		if slices.Contains(categoryIDs, p.CategoryID) {
			delete(s.products, id)
			n++
		}
	}
	return n, nil
}

// Carts

func (s *Store) CreateCart(_ context.Context, cart models.Cart) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	cart.ID = primitive.NewObjectID()
	cart.CreatedAt, cart.LastStatusChange = now, now
	if cart.Status == "" {
		cart.Status = models.CartStatusOpen
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	s.carts[cart.ID] = cart
	return cart, nil
}

func (s *Store) findCart(match func(models.Cart) bool) (models.Cart, error) {
	for _, c := range values(s.carts, func(c models.Cart) primitive.ObjectID { return c.ID }) {
		if match(c) {
			return c, nil
		}
	}
	return models.Cart{}, repository.ErrNotFound
}

func (s *Store) GetOpenCartByUser(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCart(func(c models.Cart) bool {
		return c.IsOpen() && c.UserID != nil && *c.UserID == userID
	})
}

func (s *Store) GetOpenAnonymousCart(_ context.Context, token string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCart(func(c models.Cart) bool {
		return c.IsOpen() && c.UserID == nil && c.Token == token
	})
}

func (s *Store) GetCartByPaymentIntent(_ context.Context, intentID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCart(func(c models.Cart) bool { return c.PaymentIntentID == intentID })
}

func (s *Store) SaveCart(_ context.Context, cart models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[cart.ID]; !ok {
		return repository.ErrNotFound
	}
	cart.Lines = slices.Clone(cart.Lines)
	s.carts[cart.ID] = cart
	return nil
}

func (s *Store) AssignUser(_ context.Context, cartID primitive.ObjectID, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return repository.ErrNotFound
	}
	id := user.ID
	c.UserID = &id
	c.UserEmail = user.Email
	s.carts[cartID] = c
	return nil
}

func (s *Store) TransitionStatus(_ context.Context, cartID primitive.ObjectID, from, to models.CartStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.LastStatusChange = time.Now()
	s.carts[cartID] = c
	return true, nil
}

func (s *Store) SetPaymentIntent(_ context.Context, cartID primitive.ObjectID, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return repository.ErrNotFound
	}
	c.PaymentIntentID = intentID
	c.Status = models.CartStatusWaitingForPayment
	c.LastStatusChange = time.Now()
	s.carts[cartID] = c
	return nil
}

// Users

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.users, id)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func sameID(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
