package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/developia-II/storefront-backend/internal/middleware"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/developia-II/storefront-backend/internal/services/stock"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductHandler struct {
	Catalog *catalog.Service
	Stock   *stock.Service
}

func NewProductHandler(catalog *catalog.Service, stock *stock.Service) *ProductHandler {
	return &ProductHandler{Catalog: catalog, Stock: stock}
}

// ProductDetails serves GET /products/:ref. A ref whose slug is stale is
// redirected to the product's canonical URL.
func (h *ProductHandler) ProductDetails(c *gin.Context) {
	slug, id, err := catalog.ParseRef(c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Product not found"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	details, err := h.Catalog.ProductDetails(ctx, id, middleware.IsStaff(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	if slug != details.Product.Slug {
		c.Redirect(http.StatusMovedPermanently, details.CanonicalURL)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", details))
}

// CategoryListing serves GET /category/*path where path is "<full/path>-<id>".
func (h *ProductHandler) CategoryListing(c *gin.Context) {
	path, id, err := catalog.ParseRef(c.Param("path"))
	if err != nil {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Category not found"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	category, err := h.Catalog.GetCategory(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if path != category.Path() {
		target := category.AbsoluteURL()
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusMovedPermanently, target)
		return
	}

	listing, err := h.Catalog.CategoryListing(ctx, category, c.Request.URL.Query(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", listing))
}

type productRequest struct {
	Name          string            `json:"name" validate:"required,max=128"`
	Slug          string            `json:"slug" validate:"omitempty,max=128"`
	Description   string            `json:"description"`
	CategoryID    string            `json:"categoryId" validate:"required,len=24,hexadecimal"`
	ProductTypeID string            `json:"productTypeId" validate:"omitempty,len=24,hexadecimal"`
	Price         float64           `json:"price" validate:"gte=0"`
	Currency      string            `json:"currency" validate:"omitempty,len=3"`
	IsPublished   bool              `json:"isPublished"`
	AvailableOn   *time.Time        `json:"availableOn"`
	Attributes    map[string]string `json:"attributes"`
	Variants      []variantRequest  `json:"variants" validate:"dive"`
}

type variantRequest struct {
	SKU           string            `json:"sku" validate:"required,max=64"`
	Name          string            `json:"name" validate:"max=128"`
	PriceOverride *float64          `json:"priceOverride" validate:"omitempty,gte=0"`
	Quantity      int               `json:"quantity" validate:"gte=0"`
	Attributes    map[string]string `json:"attributes"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	categoryID, _ := primitive.ObjectIDFromHex(req.CategoryID)
	typeID, _ := primitive.ObjectIDFromHex(req.ProductTypeID)
	product := models.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		CategoryID:    categoryID,
		ProductTypeID: typeID,
		Price:         req.Price,
		Currency:      strings.ToUpper(req.Currency),
		IsPublished:   req.IsPublished,
		AvailableOn:   req.AvailableOn,
		Attributes:    req.Attributes,
		Variants:      make([]models.Variant, 0, len(req.Variants)),
		Images:        []models.ProductImage{},
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.Variant{
			SKU:           v.SKU,
			Name:          v.Name,
			PriceOverride: v.PriceOverride,
			Quantity:      v.Quantity,
			Attributes:    v.Attributes,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.Catalog.CreateProduct(ctx, product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("product created successfully", created))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product deleted successfully", nil))
}

// AdjustStock applies one stock operation to a variant.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}
	variantID, ok := paramID(c, "variantId")
	if !ok {
		return
	}
	var req struct {
		Operation string `json:"operation" validate:"required,oneof=increase decrease allocate deallocate"`
		Quantity  int    `json:"quantity" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var (
		variant models.Variant
		err     error
	)
	switch req.Operation {
	case "increase":
		variant, err = h.Stock.IncreaseStock(ctx, productID, variantID, req.Quantity)
	case "decrease":
		variant, err = h.Stock.DecreaseStock(ctx, productID, variantID, req.Quantity)
	case "allocate":
		variant, err = h.Stock.AllocateStock(ctx, productID, variantID, req.Quantity)
	case "deallocate":
		variant, err = h.Stock.DeallocateStock(ctx, productID, variantID, req.Quantity)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("stock updated successfully", variant))
}

func (h *ProductHandler) CreateAttribute(c *gin.Context) {
	var req struct {
		Name   string   `json:"name" validate:"required,max=128"`
		Slug   string   `json:"slug"`
		Values []string `json:"values" validate:"dive,required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	attr := models.Attribute{Name: req.Name, Slug: req.Slug, Values: []models.AttributeValue{}}
	for _, v := range req.Values {
		attr.Values = append(attr.Values, models.AttributeValue{Name: v})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.Catalog.CreateAttribute(ctx, attr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("attribute created successfully", created))
}

func (h *ProductHandler) ListAttributes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	attrs, err := h.Catalog.ListAttributes(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("attributes fetched successfully", gin.H{"attributes": attrs}))
}

func (h *ProductHandler) CreateProductType(c *gin.Context) {
	var req struct {
		Name                string   `json:"name" validate:"required,max=128"`
		HasVariants         bool     `json:"hasVariants"`
		ProductAttributeIDs []string `json:"productAttributeIds" validate:"dive,len=24,hexadecimal"`
		VariantAttributeIDs []string `json:"variantAttributeIds" validate:"dive,len=24,hexadecimal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	pt := models.ProductType{
		Name:                req.Name,
		HasVariants:         req.HasVariants,
		ProductAttributeIDs: hexIDs(req.ProductAttributeIDs),
		VariantAttributeIDs: hexIDs(req.VariantAttributeIDs),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.Catalog.CreateProductType(ctx, pt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("product type created successfully", created))
}

// hexIDs converts already validated hex strings.
func hexIDs(hexes []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, _ := primitive.ObjectIDFromHex(h)
		ids = append(ids, id)
	}
	return ids
}
