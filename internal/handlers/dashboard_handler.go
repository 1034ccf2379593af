package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/gin-gonic/gin"
)

// DashboardHandler answers the staff dashboard's autocomplete lookups.
// Responses use the bare {"results": [...]} shape the select widgets expect.
type DashboardHandler struct {
	Catalog *catalog.Service
}

func NewDashboardHandler(catalog *catalog.Service) *DashboardHandler {
	return &DashboardHandler{Catalog: catalog}
}

func (h *DashboardHandler) AvailableVariants(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	results, err := h.Catalog.AvailableVariants(ctx, c.Query("q"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *DashboardHandler) SearchProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	results, err := h.Catalog.SearchProducts(ctx, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
