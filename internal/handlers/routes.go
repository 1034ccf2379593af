package handlers

import (
	"net/http"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/config"
	"github.com/developia-II/storefront-backend/internal/middleware"
	"github.com/developia-II/storefront-backend/internal/services/cart"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/developia-II/storefront-backend/internal/services/menu"
	"github.com/developia-II/storefront-backend/internal/services/stock"
	"github.com/developia-II/storefront-backend/internal/services/thumbnail"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories is the storage the handlers are built on.
type Repositories struct {
	Menus       repository.MenuRepository
	Categories  repository.CategoryRepository
	Collections repository.CollectionRepository
	Pages       repository.PageRepository
	Attributes  repository.AttributeRepository
	Products    repository.ProductRepository
	Carts       repository.CartRepository
	Users       repository.UserRepository
}

func MongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Menus:       repository.NewMenuRepository(db),
		Categories:  repository.NewCategoryRepository(db),
		Collections: repository.NewCollectionRepository(db),
		Pages:       repository.NewPageRepository(db),
		Attributes:  repository.NewAttributeRepository(db),
		Products:    repository.NewProductRepository(db),
		Carts:       repository.NewCartRepository(db),
		Users:       repository.NewUserRepository(db),
	}
}

// Dependencies wires services to the HTTP layer.
type Dependencies struct {
	Config     config.Config
	Users      repository.UserRepository
	Menus      menu.Service
	Catalog    *catalog.Service
	Stock      *stock.Service
	Carts      *cart.Service
	Thumbnails *thumbnail.Service
}

// NewDependencies builds every service over repos. Image uploads are
// disabled when uploader is nil.
func NewDependencies(cfg config.Config, repos Repositories, uploader utils.ImageUploader) *Dependencies {
	menus := menu.NewService(repos.Menus, repos.Categories, repos.Collections, repos.Pages)
	deps := &Dependencies{
		Config:  cfg,
		Users:   repos.Users,
		Menus:   menus,
		Catalog: catalog.NewService(repos.Categories, repos.Collections, repos.Pages, repos.Products, repos.Attributes, menus),
		Stock:   stock.NewService(repos.Products),
		Carts:   cart.NewService(repos.Carts, repos.Products),
	}
	if uploader != nil {
		deps.Thumbnails = thumbnail.NewService(repos.Products, uploader)
	}
	return deps
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, deps *Dependencies) {
	logrus.Info("Setting up routes...")

	metrics := middleware.NewMetrics()
	var origins []string
	if deps != nil {
		origins = deps.Config.CORSOrigins
	}
	router.Use(cors.New(corsConfig(origins)), middleware.RequestLogger(), metrics.Handler())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Server is running!",
			"status":  "ok",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "storefront-backend",
		})
	})
	router.GET("/metrics", metrics.Expose())

	if deps == nil {
		logrus.Warn("Database not connected - running with limited functionality")
		router.Any("/api/*path", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Database connection not available",
				"message": "The server is running but could not connect to the database. Please check server logs.",
			})
		})
		return
	}

	cfg := deps.Config
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	menuHandler := NewMenuHandler(deps.Menus)
	productHandler := NewProductHandler(deps.Catalog, deps.Stock)
	categoryHandler := NewCategoryHandler(deps.Catalog)
	dashboardHandler := NewDashboardHandler(deps.Catalog)
	cartHandler := NewCartHandler(deps.Carts, cfg.CartCookieMaxAge, cfg.DefaultCurrency)
	authHandler := NewAuthHandler(deps.Users, cartHandler)
	uploadHandler := NewUploadHandler(deps.Thumbnails)
	paymentHandler := NewPaymentHandler(cartHandler, deps.Stock, cfg.StripeWebhookSecret)

	// Storefront
	storefront := router.Group("")
	storefront.Use(middleware.OptionalAuth())
	{
		storefront.GET("/products/:ref", productHandler.ProductDetails)
		storefront.GET("/products/:ref/", productHandler.ProductDetails)
		storefront.POST("/products/:ref/add", limiter.Handler(), cartHandler.AddToCart)
		storefront.GET("/category/*path", productHandler.CategoryListing)
		storefront.GET("/page/:slug", categoryHandler.PageDetails)
		storefront.GET("/page/:slug/", categoryHandler.PageDetails)
		storefront.GET("/cart/", cartHandler.GetCart)
		storefront.POST("/cart/update/:variantId", cartHandler.UpdateLine)
	}

	// Dashboard lookups
	ajax := router.Group("/dashboard/ajax")
	ajax.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("staff"))
	{
		ajax.GET("/available-variants/", dashboardHandler.AvailableVariants)
		ajax.GET("/products/", dashboardHandler.SearchProducts)
	}

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.CreateUser)
			authGroup.POST("/login", limiter.Handler(), authHandler.LoginUser)
		}

		api.GET("/menus/:slug", menuHandler.PublicMenu)

		// Payment Routes
		api.POST("/cart/payment-intent", middleware.OptionalAuth(), paymentHandler.CreatePaymentIntent)
		api.POST("/payments/webhook", paymentHandler.HandleWebhook)
	}

	staff := api.Group("/dashboard")
	staff.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("staff"))
	{
		menus := staff.Group("/menus")
		{
			menus.POST("", menuHandler.CreateMenu)
			menus.GET("", menuHandler.ListMenus)
			menus.GET("/:id", menuHandler.GetMenu)
			menus.DELETE("/:id", menuHandler.DeleteMenu)
			menus.POST("/:id/items", menuHandler.CreateItem)
			menus.POST("/:id/reorder", menuHandler.ReorderItems)
		}
		items := staff.Group("/menu-items")
		{
			items.PATCH("/:itemId", menuHandler.UpdateItem)
			items.DELETE("/:itemId", menuHandler.DeleteItem)
		}

		categories := staff.Group("/categories")
		{
			categories.POST("", categoryHandler.CreateProductCategory)
			categories.GET("", categoryHandler.GetAllProductCategories)
			categories.DELETE("/:id", categoryHandler.DeleteProductCategory)
		}
		collections := staff.Group("/collections")
		{
			collections.POST("", categoryHandler.CreateCollection)
			collections.GET("", categoryHandler.ListCollections)
			collections.DELETE("/:id", categoryHandler.DeleteCollection)
		}
		pages := staff.Group("/pages")
		{
			pages.POST("", categoryHandler.CreatePage)
			pages.GET("", categoryHandler.ListPages)
			pages.DELETE("/:id", categoryHandler.DeletePage)
		}

		staff.POST("/attributes", productHandler.CreateAttribute)
		staff.GET("/attributes", productHandler.ListAttributes)
		staff.POST("/product-types", productHandler.CreateProductType)

		products := staff.Group("/products")
		{
			products.POST("", productHandler.CreateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.POST("/:id/variants/:variantId/stock", productHandler.AdjustStock)
			products.POST("/:id/images", uploadHandler.UploadProductImage)
			products.POST("/:id/images/:imageId/thumbnails", uploadHandler.CreateProductThumbnails)
		}
	}
}
