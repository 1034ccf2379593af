package catalog

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/adapters/repository/memory"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	svc     *Service
	menus   menu.Service
	store   *memory.Store
	root    models.Category
	sub     models.Category
	ptype   models.ProductType
	product models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	menus := menu.NewService(store, store, store, store)
	svc := NewService(store, store, store, store, store, menus)

	root, err := svc.CreateCategory(ctx, CategoryInput{Name: "Default"})
	require.NoError(t, err)
	sub, err := svc.CreateCategory(ctx, CategoryInput{Name: "Sub", ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, "default/sub", sub.Path())

	ptype, err := svc.CreateProductType(ctx, models.ProductType{Name: "Default type", HasVariants: true})
	require.NoError(t, err)

	price := 10.0
	product, err := svc.CreateProduct(ctx, models.Product{
		Name:          "Test product",
		Price:         price,
		Currency:      "USD",
		CategoryID:    sub.ID,
		ProductTypeID: ptype.ID,
		IsPublished:   true,
		Variants:      []models.Variant{{SKU: "123", Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, "test-product", product.Slug)

	return fixture{svc: svc, menus: menus, store: store, root: root, sub: sub, ptype: ptype, product: product}
}

func TestCategoryListingIncludesSubcategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	listing, err := f.svc.CategoryListing(ctx, f.root, url.Values{}, time.Now())
	require.NoError(t, err)
	require.Len(t, listing.Products, 1)
	assert.Equal(t, f.product.ID, listing.Products[0].ID)
	assert.Equal(t, "name", listing.SortBy)
	assert.Empty(t, listing.Errors)
}

func TestCategoryListingInvalidSort(t *testing.T) {
	f := newFixture(t)

	listing, err := f.svc.CategoryListing(context.Background(), f.root, url.Values{"sort_by": {"bogus"}}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, listing.Products)
	assert.Contains(t, listing.Errors, "sort_by")
	assert.NotEmpty(t, listing.FilterFields)
}

func TestCategoryListingPriceFilter(t *testing.T) {
	f := newFixture(t)

	listing, err := f.svc.CategoryListing(context.Background(), f.root, url.Values{"price_0": {"11"}}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, listing.Products)
	assert.Empty(t, listing.Errors)
}

func TestProductDetailsHiddenFromCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hidden, err := f.svc.CreateProduct(ctx, models.Product{
		Name:          "Draft",
		CategoryID:    f.sub.ID,
		ProductTypeID: f.ptype.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.ProductDetails(ctx, hidden.ID, false, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	details, err := f.svc.ProductDetails(ctx, hidden.ID, true, time.Now())
	require.NoError(t, err)
	assert.Equal(t, NotPublished, details.Availability)

	details, err = f.svc.ProductDetails(ctx, f.product.ID, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ReadyForPurchase, details.Availability)
	assert.Equal(t, f.product.AbsoluteURL(), details.CanonicalURL)
}

func TestCreateProductValidatesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, models.Product{Name: "x", CategoryID: primitive.NewObjectID(), ProductTypeID: f.ptype.ID})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = f.svc.CreateProduct(ctx, models.Product{Name: "x", CategoryID: f.sub.ID, ProductTypeID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreateCategorySlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent, err := f.svc.CreateCategory(ctx, CategoryInput{Name: "Обувь"})
	require.NoError(t, err)
	assert.Equal(t, "obuv", parent.Slug)
	child, err := f.svc.CreateCategory(ctx, CategoryInput{Name: "Café au lait", ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, "obuv/cafe-au-lait", child.Path())

	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "Shoes", Slug: "shoes/boots"})
	assert.ErrorIs(t, err, ErrInvalidSlug)
	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "???"})
	assert.ErrorIs(t, err, ErrInvalidSlug)
	_, err = f.svc.CreatePage(ctx, models.Page{Title: "About", Slug: "About Us"})
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestDeleteCategoryCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	navbar, err := f.menus.CreateMenu(ctx, "navbar")
	require.NoError(t, err)
	_, err = f.menus.CreateItem(ctx, navbar.ID, menu.ItemInput{
		Name:        "Sub",
		Destination: menu.Destination{Kind: models.LinkCategory, ID: f.sub.ID},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.root.ID))

	_, err = f.store.GetCategory(ctx, f.sub.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.GetProduct(ctx, f.product.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	items, err := f.store.ListItems(ctx, navbar.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeletePageAndCollectionCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.CreatePage(ctx, models.Page{Title: "About us"})
	require.NoError(t, err)
	assert.Equal(t, "about-us", page.Slug)
	collection, err := f.svc.CreateCollection(ctx, models.Collection{Name: "Summer"})
	require.NoError(t, err)

	navbar, err := f.menus.CreateMenu(ctx, "navbar")
	require.NoError(t, err)
	for _, d := range []menu.Destination{
		{Kind: models.LinkPage, ID: page.ID},
		{Kind: models.LinkCollection, ID: collection.ID},
	} {
		_, err := f.menus.CreateItem(ctx, navbar.ID, menu.ItemInput{Name: string(d.Kind), Destination: d})
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.DeletePage(ctx, page.ID))
	require.NoError(t, f.svc.DeleteCollection(ctx, collection.ID))

	items, err := f.store.ListItems(ctx, navbar.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVisiblePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePage(ctx, models.Page{Title: "Draft", Slug: "draft"})
	require.NoError(t, err)

	_, err = f.svc.VisiblePage(ctx, "draft", false, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	page, err := f.svc.VisiblePage(ctx, "draft", true, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Draft", page.Title)
}

func TestAvailableVariants(t *testing.T) {
	f := newFixture(t)

	results, err := f.svc.AvailableVariants(context.Background(), "", time.Now())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, f.product.Variants[0].ID, results[0].ID)
	assert.Equal(t, "123, Test product, $10.00", results[0].Text)

	results, err = f.svc.AvailableVariants(context.Background(), "nothing", time.Now())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchProducts(t *testing.T) {
	f := newFixture(t)

	results, err := f.svc.SearchProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []Choice{{ID: f.product.ID, Text: "Test product"}}, results)
}
