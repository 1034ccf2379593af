package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Users repository.UserRepository
	Carts *CartHandler
}

func NewAuthHandler(users repository.UserRepository, carts *CartHandler) *AuthHandler {
	return &AuthHandler{Users: users, Carts: carts}
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req models.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("failed to create user"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.CreateUser(ctx, models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		c.JSON(http.StatusConflict, utils.ErrorResponse("user already exists"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("user created successfully", user))
}

// LoginUser issues a bearer token and moves any anonymous cookie cart onto
// the user.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req models.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("invalid email or password"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, user.Role())
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("failed to log in"))
		return
	}
	if h.Carts != nil {
		h.Carts.assignOnLogin(ctx, c, user)
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("login successful", gin.H{
		"token": token,
		"user":  user,
	}))
}
