package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/developia-II/storefront-backend/internal/middleware"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
)

// CategoryHandler manages the objects a menu item can link to.
type CategoryHandler struct {
	Catalog *catalog.Service
}

func NewCategoryHandler(catalog *catalog.Service) *CategoryHandler {
	return &CategoryHandler{Catalog: catalog}
}

func (h *CategoryHandler) CreateProductCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" validate:"required,max=128"`
		Slug        string `json:"slug" validate:"omitempty,max=128"`
		Description string `json:"description"`
		ParentID    string `json:"parentId" validate:"omitempty,len=24,hexadecimal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	parentID, _ := optionalID(req.ParentID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	category, err := h.Catalog.CreateCategory(ctx, catalog.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    parentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	res := gin.H{
		"id":           category.ID,
		"categoryName": category.Name,
		"fullPath":     category.Path(),
		"url":          category.AbsoluteURL(),
		"createdAt":    category.CreatedAt,
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("category created successfully", res))
}

func (h *CategoryHandler) GetAllProductCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	categories, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("categories fetched successfully", gin.H{"categories": categories}))
}

func (h *CategoryHandler) DeleteProductCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Catalog.DeleteCategory(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("category deleted successfully", nil))
}

func (h *CategoryHandler) CreateCollection(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" validate:"required,max=128"`
		Slug        string   `json:"slug" validate:"omitempty,max=128"`
		IsPublished bool     `json:"isPublished"`
		ProductIDs  []string `json:"productIds" validate:"dive,len=24,hexadecimal"`
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

	collection, err := h.Catalog.CreateCollection(ctx, models.Collection{
		Name:        req.Name,
		Slug:        req.Slug,
		IsPublished: req.IsPublished,
		ProductIDs:  hexIDs(req.ProductIDs),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("collection created successfully", collection))
}

func (h *CategoryHandler) ListCollections(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	collections, err := h.Catalog.ListCollections(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("collections fetched successfully", gin.H{"collections": collections}))
}

func (h *CategoryHandler) DeleteCollection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Catalog.DeleteCollection(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("collection deleted successfully", nil))
}

func (h *CategoryHandler) CreatePage(c *gin.Context) {
	var req struct {
		Title       string     `json:"title" validate:"required,max=200"`
		Slug        string     `json:"slug" validate:"omitempty,max=100"`
		Content     string     `json:"content"`
		IsVisible   bool       `json:"isVisible"`
		AvailableOn *time.Time `json:"availableOn"`
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

	page, err := h.Catalog.CreatePage(ctx, models.Page{
		Title:       req.Title,
		Slug:        req.Slug,
		Content:     req.Content,
		IsVisible:   req.IsVisible,
		AvailableOn: req.AvailableOn,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("page created successfully", page))
}

func (h *CategoryHandler) ListPages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	pages, err := h.Catalog.ListPages(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("pages fetched successfully", gin.H{"pages": pages}))
}

func (h *CategoryHandler) DeletePage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Catalog.DeletePage(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("page deleted successfully", nil))
}

// PageDetails serves GET /page/:slug. Hidden pages are only shown to staff.
func (h *CategoryHandler) PageDetails(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, err := h.Catalog.VisiblePage(ctx, c.Param("slug"), middleware.IsStaff(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("page fetched successfully", page))
}
