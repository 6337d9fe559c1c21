package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/ports"
	apperrors "shipshape/pkg/errors"
	"shipshape/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	tokens ports.TokenService
	users  ports.UserRepository
}

func NewAuthHandler(tokens ports.TokenService, users ports.UserRepository) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		users:  users,
	}
}

func (h *AuthHandler) SetupRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required,max=2048"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation("body", "must include email and password"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validation.ValidateEmail(req.Email); err != nil {
		c.Error(apperrors.NewValidation("email", err.Error()))
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		c.Error(apperrors.NewValidation("password", err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to process credentials"))
		return
	}

	user := &domain.User{
		ID:           domain.UserID(uuid.New().String()),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			c.Error(apperrors.NewConflict("an account with this email already exists"))
			return
		}
		c.Error(apperrors.NewPersistence(err))
		return
	}

	h.respondWithTokens(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation("body", "must include email and password"))
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same message for unknown email and bad password.
		c.Error(apperrors.NewUnauthenticated("invalid credentials"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.Error(apperrors.NewUnauthenticated("invalid credentials"))
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation("refresh_token", "is required"))
		return
	}

	claims, err := h.tokens.ValidateToken(req.RefreshToken)
	if err != nil {
		c.Error(apperrors.NewUnauthenticated("invalid or expired refresh token"))
		return
	}

	accessToken, err := h.tokens.GenerateToken(claims.UserID, claims.Email)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to generate token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, user *domain.User) {
	accessToken, err := h.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to generate token"))
		return
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to generate refresh token"))
		return
	}

	c.JSON(status, gin.H{
		"user_id":       user.ID,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}
