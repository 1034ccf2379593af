package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/menu"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuHandler struct {
	Menus menu.Service
}

func NewMenuHandler(menus menu.Service) *MenuHandler {
	return &MenuHandler{Menus: menus}
}

type linkedObjectRequest struct {
	Type string `json:"type" validate:"required,oneof=category collection page"`
	ID   string `json:"id" validate:"required,len=24,hexadecimal"`
}

type menuItemRequest struct {
	Name         string               `json:"name" validate:"required,max=128"`
	ParentID     string               `json:"parentId" validate:"omitempty,len=24,hexadecimal"`
	SortOrder    *int                 `json:"sortOrder" validate:"omitempty,gte=0,lte=2147483647"`
	URL          string               `json:"url" validate:"omitempty,url,max=256"`
	LinkedObject *linkedObjectRequest `json:"linkedObject"`
}

// ParentID is raw so that an explicit null can move the item to the top level.
type menuItemUpdateRequest struct {
	Name         *string              `json:"name" validate:"omitempty,max=128"`
	ParentID     json.RawMessage      `json:"parentId"`
	URL          *string              `json:"url" validate:"omitempty,url,max=256"`
	LinkedObject *linkedObjectRequest `json:"linkedObject"`
}

func destination(url string, linked *linkedObjectRequest) (menu.Destination, error) {
	d := menu.Destination{URL: url}
	if linked != nil {
		if err := validate.Struct(linked); err != nil {
			return d, menu.ErrInvalidDestination
		}
		id, _ := primitive.ObjectIDFromHex(linked.ID)
		d.Kind = models.LinkKind(linked.Type)
		d.ID = id
	}
	return d, nil
}

func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	m, err := h.Menus.CreateMenu(ctx, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("menu created successfully", m))
}

func (h *MenuHandler) ListMenus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	menus, err := h.Menus.ListMenus(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menus fetched successfully", gin.H{"menus": menus}))
}

func (h *MenuHandler) GetMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tree, err := h.Menus.GetMenuTree(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menu fetched successfully", tree))
}

// PublicMenu serves a menu's navigation tree by slug.
func (h *MenuHandler) PublicMenu(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tree, err := h.Menus.GetMenuTreeBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menu fetched successfully", tree))
}

func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Menus.DeleteMenu(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menu deleted successfully", nil))
}

func (h *MenuHandler) CreateItem(c *gin.Context) {
	menuID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}
	dest, err := destination(req.URL, req.LinkedObject)
	if err != nil {
		respondError(c, err)
		return
	}
	parentID, _ := optionalID(req.ParentID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	item, err := h.Menus.CreateItem(ctx, menuID, menu.ItemInput{
		Name:        req.Name,
		ParentID:    parentID,
		SortOrder:   req.SortOrder,
		Destination: dest,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("menu item created successfully", item))
}

func (h *MenuHandler) UpdateItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req menuItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	update := menu.ItemUpdate{Name: req.Name}
	if len(req.ParentID) > 0 {
		var hex *string
		if err := json.Unmarshal(req.ParentID, &hex); err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid parentId"))
			return
		}
		var parent *primitive.ObjectID
		if hex != nil {
			id, err := primitive.ObjectIDFromHex(*hex)
			if err != nil {
				c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid parentId"))
				return
			}
			parent = &id
		}
		update.MoveTo = &parent
	}
	if req.URL != nil || req.LinkedObject != nil {
		url := ""
		if req.URL != nil {
			url = *req.URL
		}
		dest, err := destination(url, req.LinkedObject)
		if err != nil {
			respondError(c, err)
			return
		}
		update.Destination = &dest
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	item, err := h.Menus.UpdateItem(ctx, itemID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menu item updated successfully", item))
}

func (h *MenuHandler) DeleteItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	deleted, err := h.Menus.DeleteItem(ctx, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menu item deleted successfully", gin.H{"deleted": deleted}))
}

func (h *MenuHandler) ReorderItems(c *gin.Context) {
	menuID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ParentID string   `json:"parentId"`
		Items    []string `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	parentID, err := optionalID(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid parentId"))
		return
	}
	ordered := make([]primitive.ObjectID, 0, len(req.Items))
	for _, hex := range req.Items {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid item id "+hex))
			return
		}
		ordered = append(ordered, id)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Menus.ReorderItems(ctx, menuID, parentID, ordered); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("menu items reordered successfully", nil))
}
