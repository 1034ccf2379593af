package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository/memory"
	"github.com/developia-II/storefront-backend/internal/config"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/cart"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	utils.ConfigureJWT("handler-test-jwt-secret", time.Hour, "handler-test-cart-secret")
	goleak.VerifyTestMain(m)
}

type fixture struct {
	router  *gin.Engine
	deps    *Dependencies
	store   *memory.Store
	root    models.Category
	product models.Product
	staff   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := Repositories{
		Menus: store, Categories: store, Collections: store, Pages: store,
		Attributes: store, Products: store, Carts: store, Users: store,
	}
	cfg := config.Config{
		CartCookieMaxAge: time.Hour,
		DefaultCurrency:  "USD",
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
	}
	deps := NewDependencies(cfg, repos, nil)
	router := gin.New()
	SetupRoutes(router, deps)

	root, err := deps.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Default"})
	require.NoError(t, err)
	ptype, err := deps.Catalog.CreateProductType(ctx, models.ProductType{Name: "Default type", HasVariants: true})
	require.NoError(t, err)
	product, err := deps.Catalog.CreateProduct(ctx, models.Product{
		Name:          "Test product",
		Price:         10,
		Currency:      "USD",
		CategoryID:    root.ID,
		ProductTypeID: ptype.ID,
		IsPublished:   true,
		Variants:      []models.Variant{{SKU: "123", Quantity: 10}},
	})
	require.NoError(t, err)

	admin, err := store.CreateUser(ctx, models.User{Email: "admin@example.com", IsStaff: true})
	require.NoError(t, err)
	token, err := utils.GenerateToken(admin.ID.Hex(), admin.Email, admin.Role())
	require.NoError(t, err)

	return fixture{router: router, deps: deps, store: store, root: root, product: product, staff: token}
}

type request struct {
	method  string
	path    string
	json    any
	form    url.Values
	token   string
	cookie  *http.Cookie
	headers map[string]string
}

func (f fixture) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	contentType := ""
	switch {
	case r.json != nil:
		raw, err := json.Marshal(r.json)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
		contentType = "application/json"
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func cartCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.CartCookieName {
			return c
		}
	}
	return nil
}

func (f fixture) productRef() string {
	return "test-product-" + f.product.ID.Hex()
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, request{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
}

func TestSetupRoutesWithoutDatabase(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menus/navbar", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardRequiresStaff(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodGet, path: "/api/v1/dashboard/menus"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer, err := utils.GenerateToken(f.product.ID.Hex(), "shopper@example.com", models.RoleCustomer)
	require.NoError(t, err)
	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/dashboard/menus", token: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMenuLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/dashboard/menus", token: f.staff, json: gin.H{"slug": "navbar"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data models.Menu `json:"data"`
	}
	decode(t, rec, &created)

	rec = f.do(t, request{method: http.MethodPost, path: "/api/v1/dashboard/menus", token: f.staff, json: gin.H{"slug": "navbar"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	itemsPath := "/api/v1/dashboard/menus/" + created.Data.ID.Hex() + "/items"
	rec = f.do(t, request{method: http.MethodPost, path: itemsPath, token: f.staff, json: gin.H{
		"name":         "Shop",
		"linkedObject": gin.H{"type": "category", "id": f.root.ID.Hex()},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item struct {
		Data models.MenuItem `json:"data"`
	}
	decode(t, rec, &item)
	require.NotNil(t, item.Data.SortOrder)
	assert.Equal(t, 0, *item.Data.SortOrder)

	t.Run("url and linked object together", func(t *testing.T) {
		rec := f.do(t, request{method: http.MethodPost, path: itemsPath, token: f.staff, json: gin.H{
			"name":         "Both",
			"url":          "https://example.com",
			"linkedObject": gin.H{"type": "category", "id": f.root.ID.Hex()},
		}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing linked object", func(t *testing.T) {
		rec := f.do(t, request{method: http.MethodPost, path: itemsPath, token: f.staff, json: gin.H{
			"name":         "Ghost",
			"linkedObject": gin.H{"type": "page", "id": f.root.ID.Hex()},
		}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec = f.do(t, request{method: http.MethodPost, path: itemsPath, token: f.staff, json: gin.H{
		"name":     "Blog",
		"url":      "https://example.com/blog",
		"parentId": item.Data.ID.Hex(),
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/menus/navbar"})
	require.Equal(t, http.StatusOK, rec.Code)
	var tree struct {
		Data struct {
			Items []struct {
				Name     string `json:"name"`
				URL      string `json:"url"`
				Children []struct {
					Name string `json:"name"`
					URL  string `json:"url"`
				} `json:"children"`
			} `json:"items"`
		} `json:"data"`
	}
	decode(t, rec, &tree)
	require.Len(t, tree.Data.Items, 1)
	assert.Equal(t, f.root.AbsoluteURL(), tree.Data.Items[0].URL)
	require.Len(t, tree.Data.Items[0].Children, 1)
	assert.Equal(t, "https://example.com/blog", tree.Data.Items[0].Children[0].URL)

	// moving the child to the top level with an explicit null parent
	var child models.MenuItem
	items, err := f.store.ListItems(context.Background(), created.Data.ID)
	require.NoError(t, err)
	for _, it := range items {
		if it.Name == "Blog" {
			child = it
		}
	}
	rec = f.do(t, request{method: http.MethodPatch, path: "/api/v1/dashboard/menu-items/" + child.ID.Hex(), token: f.staff,
		json: map[string]any{"parentId": nil}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var moved struct {
		Data models.MenuItem `json:"data"`
	}
	decode(t, rec, &moved)
	assert.Nil(t, moved.Data.ParentID)

	// deleting the category drops the menu item linking to it
	rec = f.do(t, request{method: http.MethodDelete, path: "/api/v1/dashboard/categories/" + f.root.ID.Hex(), token: f.staff})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	items, err = f.store.ListItems(context.Background(), created.Data.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Blog", items[0].Name)

	rec = f.do(t, request{method: http.MethodPost, path: "/api/v1/dashboard/menus/" + primitive.NewObjectID().Hex() + "/reorder",
		token: f.staff, json: gin.H{"items": []string{items[0].ID.Hex()}}})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestProductDetails(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodGet, path: "/products/" + f.productRef() + "/"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var details struct {
		Data struct {
			Availability string `json:"availability"`
			Price        string `json:"price"`
		} `json:"data"`
	}
	decode(t, rec, &details)
	assert.Equal(t, "$10.00", details.Data.Price)

	rec = f.do(t, request{method: http.MethodGet, path: "/products/old-name-" + f.product.ID.Hex() + "/"})
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, f.product.AbsoluteURL(), rec.Header().Get("Location"))

	rec = f.do(t, request{method: http.MethodGet, path: "/products/not-a-ref/"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHiddenProductPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hidden, err := f.deps.Catalog.CreateProduct(ctx, models.Product{
		Name:          "Secret",
		Price:         5,
		CategoryID:    f.root.ID,
		ProductTypeID: f.product.ProductTypeID,
		Variants:      []models.Variant{{SKU: "s1", Quantity: 1}},
	})
	require.NoError(t, err)
	path := hidden.AbsoluteURL()

	rec := f.do(t, request{method: http.MethodGet, path: path})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, request{method: http.MethodGet, path: path, token: f.staff})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCategoryListing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodGet, path: f.root.AbsoluteURL()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listing struct {
		Data struct {
			Products []models.Product `json:"products"`
			SortBy   string           `json:"sortBy"`
		} `json:"data"`
	}
	decode(t, rec, &listing)
	assert.Len(t, listing.Data.Products, 1)
	assert.Equal(t, "name", listing.Data.SortBy)

	rec = f.do(t, request{method: http.MethodGet, path: f.root.AbsoluteURL() + "?sort_by=bogus"})
	require.Equal(t, http.StatusOK, rec.Code)
	var invalid struct {
		Data struct {
			Products []models.Product `json:"products"`
			Errors   map[string]any   `json:"errors"`
		} `json:"data"`
	}
	decode(t, rec, &invalid)
	assert.Empty(t, invalid.Data.Products)
	assert.Contains(t, invalid.Data.Errors, "sort_by")

	rec = f.do(t, request{method: http.MethodGet, path: "/category/wrong-" + f.root.ID.Hex() + "/?price_0=1"})
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, f.root.AbsoluteURL()+"?price_0=1", rec.Header().Get("Location"))
}

func TestCategoryListingNonASCIIParent(t *testing.T) {
	f := newFixture(t)

	create := func(body gin.H) (int, string, string) {
		rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/dashboard/categories", token: f.staff, json: body})
		var res struct {
			Data struct {
				ID  string `json:"id"`
				URL string `json:"url"`
			} `json:"data"`
		}
		if rec.Code == http.StatusCreated {
			decode(t, rec, &res)
		}
		return rec.Code, res.Data.ID, res.Data.URL
	}

	code, parentID, _ := create(gin.H{"name": "Обувь"})
	require.Equal(t, http.StatusCreated, code)
	code, _, childURL := create(gin.H{"name": "Boots", "parentId": parentID})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, strings.HasPrefix(childURL, "/category/obuv/boots-"), childURL)

	rec := f.do(t, request{method: http.MethodGet, path: childURL})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code, _, _ = create(gin.H{"name": "Shoes", "slug": "Shoes/Boots"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _, _ = create(gin.H{"name": "!!!"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAddToCart(t *testing.T) {
	f := newFixture(t)
	variant := f.product.Variants[0].ID.Hex()
	addPath := "/products/" + f.productRef() + "/add"

	rec := f.do(t, request{method: http.MethodPost, path: addPath, form: url.Values{"quantity": {"2"}, "variant": {variant}}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/cart/", rec.Header().Get("Location"))
	cookie := cartCookie(rec)
	require.NotNil(t, cookie)

	rec = f.do(t, request{method: http.MethodPost, path: addPath, cookie: cookie,
		form:    url.Values{"quantity": {"1"}, "variant": {variant}},
		headers: map[string]string{"X-Requested-With": "XMLHttpRequest"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"next":"/cart/"}`, rec.Body.String())

	rec = f.do(t, request{method: http.MethodGet, path: "/cart/", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Data cart.View `json:"data"`
	}
	decode(t, rec, &view)
	assert.Equal(t, 3, view.Data.Quantity)
	assert.Equal(t, "$30.00", view.Data.TotalLabel)
	assert.NotNil(t, cartCookie(rec), "a saved cart refreshes its cookie")

	t.Run("form errors", func(t *testing.T) {
		cases := []struct {
			name    string
			form    url.Values
			ajax    bool
			status  int
			errorOn string
		}{
			{"missing quantity", url.Values{"variant": {variant}}, false, http.StatusOK, "quantity"},
			{"zero quantity", url.Values{"quantity": {"0"}, "variant": {variant}}, false, http.StatusOK, "quantity"},
			{"unknown variant", url.Values{"quantity": {"1"}, "variant": {"nope"}}, false, http.StatusOK, "variant"},
			{"insufficient stock", url.Values{"quantity": {"20"}, "variant": {variant}}, false, http.StatusOK, "quantity"},
			{"xhr", url.Values{"quantity": {"0"}, "variant": {variant}}, true, http.StatusBadRequest, "quantity"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				r := request{method: http.MethodPost, path: addPath, cookie: cookie, form: tc.form}
				if tc.ajax {
					r.headers = map[string]string{"X-Requested-With": "XMLHttpRequest"}
				}
				rec := f.do(t, r)
				require.Equal(t, tc.status, rec.Code, rec.Body.String())
				var body struct {
					Errors map[string]string `json:"errors"`
				}
				decode(t, rec, &body)
				assert.Contains(t, body.Errors, tc.errorOn)
			})
		}

		c, err := f.store.GetOpenAnonymousCart(context.Background(), view.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, 3, c.Quantity(), "failed submissions leave the cart unchanged")
	})

	t.Run("tampered cookie", func(t *testing.T) {
		rec := f.do(t, request{method: http.MethodGet, path: "/cart/", cookie: &http.Cookie{Name: utils.CartCookieName, Value: "forged"}})
		require.Equal(t, http.StatusOK, rec.Code)
		var empty struct {
			Data cart.View `json:"data"`
		}
		decode(t, rec, &empty)
		assert.Zero(t, empty.Data.Quantity)
		assert.Nil(t, cartCookie(rec), "an unsaved cart sets no cookie")
	})
}

func TestUpdateCartLine(t *testing.T) {
	f := newFixture(t)
	variant := f.product.Variants[0].ID.Hex()

	rec := f.do(t, request{method: http.MethodPost, path: "/products/" + f.productRef() + "/add",
		form: url.Values{"quantity": {"2"}, "variant": {variant}}})
	cookie := cartCookie(rec)
	require.NotNil(t, cookie)

	rec = f.do(t, request{method: http.MethodPost, path: "/cart/update/" + variant, cookie: cookie, form: url.Values{"quantity": {"5"}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view struct {
		Data cart.View `json:"data"`
	}
	decode(t, rec, &view)
	assert.Equal(t, 5, view.Data.Quantity)

	rec = f.do(t, request{method: http.MethodPost, path: "/cart/update/" + variant, cookie: cookie, form: url.Values{"quantity": {"51"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, request{method: http.MethodPost, path: "/cart/update/" + variant, cookie: cookie, form: url.Values{"quantity": {"0"}}})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &view)
	assert.Zero(t, view.Data.Quantity)
	assert.Empty(t, view.Data.Lines)
}

func TestLoginAssignsAnonymousCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register",
		json: gin.H{"email": "Shopper@Example.com", "password": "correct horse"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register",
		json: gin.H{"email": "shopper@example.com", "password": "correct horse"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, request{method: http.MethodPost, path: "/products/" + f.productRef() + "/add",
		form: url.Values{"quantity": {"1"}, "variant": {f.product.Variants[0].ID.Hex()}}})
	cookie := cartCookie(rec)
	require.NotNil(t, cookie)

	rec = f.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login",
		json: gin.H{"email": "shopper@example.com", "password": "wrong password"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", cookie: cookie,
		json: gin.H{"email": "shopper@example.com", "password": "correct horse"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Data struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		} `json:"data"`
	}
	decode(t, rec, &login)
	assert.NotEmpty(t, login.Data.Token)

	owned, err := f.store.GetOpenCartByUser(ctx, login.Data.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owned.Quantity())

	// the bearer token now resolves the same cart without the cookie
	rec = f.do(t, request{method: http.MethodGet, path: "/cart/", token: login.Data.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Data cart.View `json:"data"`
	}
	decode(t, rec, &view)
	assert.Equal(t, owned.ID, view.Data.ID)
}

func TestDashboardAjax(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodGet, path: "/dashboard/ajax/available-variants/?q=", token: f.staff})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"results":[{"id":"`+f.product.Variants[0].ID.Hex()+`","text":"123, Test product, $10.00"}]}`,
		rec.Body.String())

	rec = f.do(t, request{method: http.MethodGet, path: "/dashboard/ajax/products/?q=test", token: f.staff})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[{"id":"`+f.product.ID.Hex()+`","text":"Test product"}]}`, rec.Body.String())

	rec = f.do(t, request{method: http.MethodGet, path: "/dashboard/ajax/products/?q=test"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdjustStock(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/dashboard/products/" + f.product.ID.Hex() + "/variants/" + f.product.Variants[0].ID.Hex() + "/stock"

	rec := f.do(t, request{method: http.MethodPost, path: path, token: f.staff, json: gin.H{"operation": "increase", "quantity": 5}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var variant struct {
		Data models.Variant `json:"data"`
	}
	decode(t, rec, &variant)
	assert.Equal(t, 15, variant.Data.Quantity)

	rec = f.do(t, request{method: http.MethodPost, path: path, token: f.staff, json: gin.H{"operation": "decrease", "quantity": 100}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, request{method: http.MethodPost, path: path, token: f.staff, json: gin.H{"operation": "steal", "quantity": 1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/dashboard/products/" + f.product.ID.Hex() + "/images", token: f.staff})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPaymentFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.do(t, request{method: http.MethodPost, path: "/products/" + f.productRef() + "/add",
		form: url.Values{"quantity": {"2"}, "variant": {f.product.Variants[0].ID.Hex()}}})
	cookie := cartCookie(rec)
	require.NotNil(t, cookie)

	carts := NewCartHandler(f.deps.Carts, time.Hour, "USD")
	h := NewPaymentHandler(carts, f.deps.Stock, "whsec_test")
	var requested *stripe.PaymentIntentParams
	h.newIntent = func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		requested = p
		return &stripe.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret", Amount: *p.Amount}, nil
	}
	router := gin.New()
	router.POST("/pay", h.CreatePaymentIntent)
	router.POST("/webhook", h.HandleWebhook)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, requested)
	assert.Equal(t, int64(2000), *requested.Amount)
	assert.Equal(t, "usd", *requested.Currency)

	// the cart is no longer open, so a second attempt has nothing to pay for
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unsigned events are rejected")

	event := stripe.Event{
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"pi_test"}`)},
	}
	require.NoError(t, h.handleEvent(ctx, event))
	require.NoError(t, h.handleEvent(ctx, event))

	p, err := f.store.GetProduct(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Variants[0].QuantityAllocated)

	unknown := stripe.Event{
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"pi_other"}`)},
	}
	assert.NoError(t, h.handleEvent(ctx, unknown))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), minorUnits(19.99, "USD"))
	assert.Equal(t, int64(500), minorUnits(500, "jpy"))
}
