package menu

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidSlug        = errors.New("slug may only contain lowercase letters, digits, hyphens and underscores")
	ErrInvalidName        = errors.New("name is required and must be at most 128 characters")
	ErrInvalidDestination = errors.New("a menu item must link to exactly one of url, category, collection or page")
	ErrInvalidParent      = errors.New("parent must be another item of the same menu and not one of its descendants")
	ErrInvalidOrder       = errors.New("ordered items must be exactly the siblings being reordered")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]{1,50}$`)

// MaxSortOrder bounds explicit sort orders so the next sibling's order fits.
const MaxSortOrder = math.MaxInt32

// Destination selects what a menu item points at: either URL or Kind+ID.
type Destination struct {
	URL  string
	Kind models.LinkKind
	ID   primitive.ObjectID
}

func (d Destination) isLink() bool {
	return d.Kind != "" || !d.ID.IsZero()
}

type ItemInput struct {
	Name     string
	ParentID *primitive.ObjectID
	// SortOrder, when nil, is computed from the item's siblings.
	SortOrder   *int
	Destination Destination
}

// ItemUpdate changes only the fields that are set. Sort order is never touched.
type ItemUpdate struct {
	Name *string
	// MoveTo reparents the item; a pointer to nil moves it to the top level.
	MoveTo      **primitive.ObjectID
	Destination *Destination
}

type Service interface {
	CreateMenu(ctx context.Context, slug string) (models.Menu, error)
	ListMenus(ctx context.Context) ([]models.Menu, error)
	GetMenuTree(ctx context.Context, id primitive.ObjectID) (Tree, error)
	GetMenuTreeBySlug(ctx context.Context, slug string) (Tree, error)
	DeleteMenu(ctx context.Context, id primitive.ObjectID) error

	CreateItem(ctx context.Context, menuID primitive.ObjectID, input ItemInput) (models.MenuItem, error)
	UpdateItem(ctx context.Context, itemID primitive.ObjectID, input ItemUpdate) (models.MenuItem, error)
	DeleteItem(ctx context.Context, itemID primitive.ObjectID) (int64, error)
	ReorderItems(ctx context.Context, menuID primitive.ObjectID, parentID *primitive.ObjectID, ordered []primitive.ObjectID) error
	// DeleteLinkedItems removes items pointing at a deleted catalog object, with their subtrees.
	DeleteLinkedItems(ctx context.Context, kind models.LinkKind, id primitive.ObjectID) (int64, error)
}

type service struct {
	menus       repository.MenuRepository
	categories  repository.CategoryRepository
	collections repository.CollectionRepository
	pages       repository.PageRepository
	v           *validator.Validate
}

func NewService(
	menus repository.MenuRepository,
	categories repository.CategoryRepository,
	collections repository.CollectionRepository,
	pages repository.PageRepository,
) Service {
	return &service{
		menus:       menus,
		categories:  categories,
		collections: collections,
		pages:       pages,
		v:           validator.New(),
	}
}

func (s *service) CreateMenu(ctx context.Context, slug string) (models.Menu, error) {
	if !slugPattern.MatchString(slug) {
		return models.Menu{}, ErrInvalidSlug
	}
	menu, err := s.menus.CreateMenu(ctx, models.Menu{Slug: slug})
	if err != nil {
		return models.Menu{}, err
	}
	logrus.WithField("slug", slug).Info("menu created")
	return menu, nil
}

func (s *service) ListMenus(ctx context.Context) ([]models.Menu, error) {
	return s.menus.ListMenus(ctx)
}

func (s *service) GetMenuTree(ctx context.Context, id primitive.ObjectID) (Tree, error) {
	menu, err := s.menus.GetMenu(ctx, id)
	if err != nil {
		return Tree{}, err
	}
	return s.tree(ctx, menu)
}

func (s *service) GetMenuTreeBySlug(ctx context.Context, slug string) (Tree, error) {
	menu, err := s.menus.GetMenuBySlug(ctx, slug)
	if err != nil {
		return Tree{}, err
	}
	return s.tree(ctx, menu)
}

func (s *service) tree(ctx context.Context, menu models.Menu) (Tree, error) {
	items, err := s.menus.ListItems(ctx, menu.ID)
	if err != nil {
		return Tree{}, err
	}
	resolved, err := s.resolve(ctx, items)
	if err != nil {
		return Tree{}, err
	}
	return Tree{Menu: menu, Items: BuildForest(resolved)}, nil
}

func (s *service) DeleteMenu(ctx context.Context, id primitive.ObjectID) error {
	if err := s.menus.DeleteMenu(ctx, id); err != nil {
		return err
	}
	logrus.WithField("menuId", id.Hex()).Info("menu deleted")
	return nil
}

func (s *service) CreateItem(ctx context.Context, menuID primitive.ObjectID, input ItemInput) (models.MenuItem, error) {
	if err := s.validateName(input.Name); err != nil {
		return models.MenuItem{}, err
	}
	if _, err := s.menus.GetMenu(ctx, menuID); err != nil {
		return models.MenuItem{}, err
	}

	item := models.MenuItem{MenuID: menuID, Name: input.Name}
	if input.ParentID != nil {
		parent, err := s.menus.GetItem(ctx, *input.ParentID)
		if err != nil {
			return models.MenuItem{}, parentError(err)
		}
		if parent.MenuID != menuID {
			return models.MenuItem{}, ErrInvalidParent
		}
		id := parent.ID
		item.ParentID = &id
	}
	if err := s.applyDestination(ctx, &item, input.Destination); err != nil {
		return models.MenuItem{}, err
	}

	if input.SortOrder != nil {
		order := *input.SortOrder
		if order < 0 || order > MaxSortOrder {
			return models.MenuItem{}, ErrInvalidOrder
		}
		item.SortOrder = &order
	} else {
		existing, err := s.menus.MaxSiblingSortOrder(ctx, menuID, item.ParentID)
		if err != nil {
			return models.MenuItem{}, fmt.Errorf("compute sort order: %w", err)
		}
		order := 0
		if existing != nil {
			if *existing >= MaxSortOrder {
				return models.MenuItem{}, ErrInvalidOrder
			}
			order = *existing + 1
		}
		item.SortOrder = &order
	}

	created, err := s.menus.CreateItem(ctx, item)
	if err != nil {
		return models.MenuItem{}, err
	}
	logrus.WithFields(logrus.Fields{
		"menuId":    menuID.Hex(),
		"itemId":    created.ID.Hex(),
		"sortOrder": created.Order(),
	}).Info("menu item created")
	return created, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID primitive.ObjectID, input ItemUpdate) (models.MenuItem, error) {
	item, err := s.menus.GetItem(ctx, itemID)
	if err != nil {
		return models.MenuItem{}, err
	}

	if input.Name != nil {
		if err := s.validateName(*input.Name); err != nil {
			return models.MenuItem{}, err
		}
		item.Name = *input.Name
	}

	if input.MoveTo != nil {
		newParent := *input.MoveTo
		if newParent == nil {
			item.ParentID = nil
		} else {
			if err := s.checkNewParent(ctx, item, *newParent); err != nil {
				return models.MenuItem{}, err
			}
			id := *newParent
			item.ParentID = &id
		}
	}

	if input.Destination != nil {
		if err := s.applyDestination(ctx, &item, *input.Destination); err != nil {
			return models.MenuItem{}, err
		}
	}

	if err := s.menus.UpdateItem(ctx, item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (s *service) checkNewParent(ctx context.Context, item models.MenuItem, parentID primitive.ObjectID) error {
	if parentID == item.ID {
		return ErrInvalidParent
	}
	parent, err := s.menus.GetItem(ctx, parentID)
	if err != nil {
		return parentError(err)
	}
	if parent.MenuID != item.MenuID {
		return ErrInvalidParent
	}

	items, err := s.menus.ListItems(ctx, item.MenuID)
	if err != nil {
		return err
	}
	for _, id := range Descendants(items, item.ID) {
		if id == parentID {
			return ErrInvalidParent
		}
	}
	return nil
}

func (s *service) DeleteItem(ctx context.Context, itemID primitive.ObjectID) (int64, error) {
	item, err := s.menus.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	items, err := s.menus.ListItems(ctx, item.MenuID)
	if err != nil {
		return 0, err
	}

	ids := append([]primitive.ObjectID{item.ID}, Descendants(items, item.ID)...)
	deleted, err := s.menus.DeleteItems(ctx, ids)
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"itemId": itemID.Hex(), "deleted": deleted}).Info("menu item deleted")
	return deleted, nil
}

func (s *service) ReorderItems(ctx context.Context, menuID primitive.ObjectID, parentID *primitive.ObjectID, ordered []primitive.ObjectID) error {
	if _, err := s.menus.GetMenu(ctx, menuID); err != nil {
		return err
	}
	items, err := s.menus.ListItems(ctx, menuID)
	if err != nil {
		return err
	}

	parentFound := parentID == nil
	siblings := map[primitive.ObjectID]bool{}
	for _, it := range items {
		if parentID != nil && it.ID == *parentID {
			parentFound = true
		}
		if sameParent(it.ParentID, parentID) {
			siblings[it.ID] = true
		}
	}
	if !parentFound {
		return ErrInvalidParent
	}
	if len(ordered) != len(siblings) {
		return ErrInvalidOrder
	}

	orders := make(map[primitive.ObjectID]int, len(ordered))
	for i, id := range ordered {
		if !siblings[id] {
			return ErrInvalidOrder
		}
		if _, dup := orders[id]; dup {
			return ErrInvalidOrder
		}
		orders[id] = i
	}
	return s.menus.SetSortOrders(ctx, orders)
}

func (s *service) DeleteLinkedItems(ctx context.Context, kind models.LinkKind, id primitive.ObjectID) (int64, error) {
	linked, err := s.menus.FindItemsLinkedTo(ctx, kind, id)
	if err != nil {
		return 0, err
	}
	if len(linked) == 0 {
		return 0, nil
	}

	byMenu := map[primitive.ObjectID][]models.MenuItem{}
	var ids []primitive.ObjectID
	for _, it := range linked {
		items, ok := byMenu[it.MenuID]
		if !ok {
			items, err = s.menus.ListItems(ctx, it.MenuID)
			if err != nil {
				return 0, err
			}
			byMenu[it.MenuID] = items
		}
		ids = append(ids, it.ID)
		ids = append(ids, Descendants(items, it.ID)...)
	}
	return s.menus.DeleteItems(ctx, ids)
}

func (s *service) validateName(name string) error {
	if err := s.v.Var(name, "required,max=128"); err != nil {
		return ErrInvalidName
	}
	return nil
}

// applyDestination checks d and points item at it.
func (s *service) applyDestination(ctx context.Context, item *models.MenuItem, d Destination) error {
	hasURL := d.URL != ""
	if hasURL == d.isLink() {
		return ErrInvalidDestination
	}

	if hasURL {
		if err := s.v.Var(d.URL, "url,max=256"); err != nil {
			return fmt.Errorf("%w: invalid url", ErrInvalidDestination)
		}
		item.SetURL(d.URL)
		return nil
	}

	if !d.Kind.Valid() || d.ID.IsZero() {
		return ErrInvalidDestination
	}
	var err error
	switch d.Kind {
	case models.LinkCategory:
		_, err = s.categories.GetCategory(ctx, d.ID)
	case models.LinkCollection:
		_, err = s.collections.GetCollection(ctx, d.ID)
	case models.LinkPage:
		_, err = s.pages.GetPage(ctx, d.ID)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", d.Kind, d.ID.Hex(), err)
	}
	item.SetLink(d.Kind, d.ID)
	return nil
}

// resolve loads the catalog objects referenced by items in one query per kind.
func (s *service) resolve(ctx context.Context, items []models.MenuItem) ([]models.ResolvedMenuItem, error) {
	var categoryIDs, collectionIDs, pageIDs []primitive.ObjectID
	for _, it := range items {
		if it.CategoryID != nil {
			categoryIDs = append(categoryIDs, *it.CategoryID)
		}
		if it.CollectionID != nil {
			collectionIDs = append(collectionIDs, *it.CollectionID)
		}
		if it.PageID != nil {
			pageIDs = append(pageIDs, *it.PageID)
		}
	}

	categories := map[primitive.ObjectID]*models.Category{}
	if len(categoryIDs) > 0 {
		found, err := s.categories.GetCategories(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			categories[found[i].ID] = &found[i]
		}
	}
	collections := map[primitive.ObjectID]*models.Collection{}
	if len(collectionIDs) > 0 {
		found, err := s.collections.GetCollections(ctx, collectionIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			collections[found[i].ID] = &found[i]
		}
	}
	pages := map[primitive.ObjectID]*models.Page{}
	if len(pageIDs) > 0 {
		found, err := s.pages.GetPages(ctx, pageIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			pages[found[i].ID] = &found[i]
		}
	}

	resolved := make([]models.ResolvedMenuItem, 0, len(items))
	for _, it := range items {
		r := models.ResolvedMenuItem{MenuItem: it}
		if it.CategoryID != nil {
			r.Category = categories[*it.CategoryID]
		}
		if it.CollectionID != nil {
			r.Collection = collections[*it.CollectionID]
		}
		if it.PageID != nil {
			r.Page = pages[*it.PageID]
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

func parentError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidParent
	}
	return err
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
