package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/developia-II/storefront-backend/internal/middleware"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/cart"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const cartURL = "/cart/"

type CartHandler struct {
	Carts           *cart.Service
	CookieMaxAge    time.Duration
	DefaultCurrency string
}

func NewCartHandler(carts *cart.Service, cookieMaxAge time.Duration, defaultCurrency string) *CartHandler {
	return &CartHandler{Carts: carts, CookieMaxAge: cookieMaxAge, DefaultCurrency: defaultCurrency}
}

// identity collects who is asking: the bearer token's user and the signed
// cart cookie. A cookie that fails verification is treated as absent.
func (h *CartHandler) identity(c *gin.Context) cart.Identity {
	id := cart.Identity{
		UserID: currentUserID(c),
		Email:  c.GetString(middleware.ContextEmail),
	}
	if value, err := c.Cookie(utils.CartCookieName); err == nil && value != "" {
		if token, err := utils.ParseCartToken(value); err == nil {
			id.Token = token
		}
	}
	return id
}

func (h *CartHandler) setCookie(c *gin.Context, token string) {
	value, err := utils.SignCartToken(token, h.CookieMaxAge)
	if err != nil {
		logrus.WithError(err).Error("failed to sign cart cookie")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.CartCookieName, value, int(h.CookieMaxAge.Seconds()), "/", "", false, true)
}

// GetCart returns the current cart. A cart that does not exist yet is shown
// empty and not saved.
func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	current, saved, err := h.Carts.Current(ctx, h.identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Carts.Summarize(ctx, current, h.DefaultCurrency)
	if err != nil {
		respondError(c, err)
		return
	}
	if saved {
		h.setCookie(c, current.Token)
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("cart fetched successfully", view))
}

// AddToCart handles the product page form. Form errors are reported with 200
// so the page can render them, or 400 for XHR callers.
func (h *CartHandler) AddToCart(c *gin.Context) {
	_, productID, err := catalog.ParseRef(c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Product not found"))
		return
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil {
		h.formErrors(c, map[string]string{"quantity": "Enter a whole number."})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.Carts.AddVariant(ctx, h.identity(c), cart.AddInput{
		ProductID: productID,
		VariantID: strings.TrimSpace(c.PostForm("variant")),
		Quantity:  quantity,
	})
	var fieldErr *cart.FieldError
	if errors.As(err, &fieldErr) {
		h.formErrors(c, map[string]string{fieldErr.Field: fieldErr.Message})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, updated.Token)
	if isAjax(c) {
		c.JSON(http.StatusOK, gin.H{"next": cartURL})
		return
	}
	c.Redirect(http.StatusFound, cartURL)
}

func (h *CartHandler) formErrors(c *gin.Context, errs map[string]string) {
	status := http.StatusOK
	if isAjax(c) {
		status = http.StatusBadRequest
	}
	c.JSON(status, utils.ValidationResponse("Could not add to cart", errs))
}

// UpdateLine sets a line's quantity; zero removes the line.
func (h *CartHandler) UpdateLine(c *gin.Context) {
	quantity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ValidationResponse("Could not update cart", map[string]string{
			"quantity": "Enter a whole number.",
		}))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.Carts.UpdateLine(ctx, h.identity(c), c.Param("variantId"), quantity)
	var fieldErr *cart.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, utils.ValidationResponse("Could not update cart", map[string]string{
			fieldErr.Field: fieldErr.Message,
		}))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.Carts.Summarize(ctx, updated, h.DefaultCurrency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("cart updated successfully", view))
}

// assignOnLogin hands the cookie cart over to user.
func (h *CartHandler) assignOnLogin(ctx context.Context, c *gin.Context, user models.User) {
	token := h.identity(c).Token
	if err := h.Carts.AssignAnonymousCart(ctx, token, user); err != nil {
		logrus.WithError(err).WithField("userId", user.ID.Hex()).Warn("failed to assign anonymous cart")
	}
}
