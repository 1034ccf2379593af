package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/middleware"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/internal/services/cart"
	"github.com/developia-II/storefront-backend/internal/services/catalog"
	"github.com/developia-II/storefront-backend/internal/services/menu"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 10 * time.Second

var validate = validator.New()

// badRequest lists the errors a client can fix by changing its input.
var badRequest = []error{
	menu.ErrInvalidSlug,
	menu.ErrInvalidName,
	menu.ErrInvalidDestination,
	menu.ErrInvalidParent,
	menu.ErrInvalidOrder,
	catalog.ErrInvalidRef,
	catalog.ErrInvalidCategory,
	catalog.ErrInvalidType,
	catalog.ErrInvalidSlug,
	cart.ErrInvalidQuantity,
	cart.ErrUnknownVariant,
	cart.ErrEmptyCart,
	models.ErrInsufficientStock,
}

// respondError maps err onto a status code and writes the error envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		status = http.StatusConflict
	default:
		for _, target := range badRequest {
			if errors.Is(err, target) {
				status = http.StatusBadRequest
				break
			}
		}
	}

	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(status, utils.ErrorResponse("Something went wrong, please try again"))
		return
	}
	c.JSON(status, utils.ErrorResponse(err.Error()))
}

func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid "+name))
		return primitive.NilObjectID, false
	}
	return id, true
}

func optionalID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// currentUserID returns the authenticated user's id, if any.
func currentUserID(c *gin.Context) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	if err != nil {
		return nil
	}
	return &id
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
