// api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Annany2002/sql-sketcher-backend/api/models"
	"github.com/Annany2002/sql-sketcher-backend/config"
	"github.com/Annany2002/sql-sketcher-backend/internal/auth"
	"github.com/Annany2002/sql-sketcher-backend/internal/storage"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Users UserStore
	Cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(users UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Users: users,
		Cfg:   cfg,
	}
}

// Signup handles user registration requests.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Signup binding error: %v", err)
		bindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		customLog.Warnf("Failed to hash password during signup for email %s: %v", email, err)
		_ = c.Error(err)
		return
	}

	userID, err := h.Users.CreateUser(c.Request.Context(), uuid.NewString(), username, email, hashedPassword)
	if err != nil {
		customLog.Warnf("Failed to create user %s: %v", email, err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Successfully registered user with email %s", email)
	c.JSON(http.StatusCreated, models.SignupResponse{UserID: userID, Message: "Usuario registrado exitosamente"})
}

// Login handles user login requests and issues JWT on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Login binding error: %v", err)
		bindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.Users.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		customLog.Warnf("Login failed for email %s: %v", email, err)
		if errors.Is(err, storage.ErrUserNotFound) {
			err = storage.ErrInvalidCredentials
		}
		_ = c.Error(err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Warnf("Login attempt failed for email %s: invalid password", user.Email)
		_ = c.Error(storage.ErrInvalidCredentials)
		return
	}

	tokenString, err := auth.GenerateJWT(user.UserId, user.Email, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		customLog.Warnf("Failed to generate JWT for user %s: %v", user.UserId, err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Message: "Sesión iniciada exitosamente",
		Token:   tokenString,
		User: models.UserResponse{
			UserID:    user.UserId,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	})
}

// Me returns the stored profile of the token's user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := currentUserID(c)
	user, err := h.Users.FindUserByUserId(c.Request.Context(), userID)
	if err != nil {
		customLog.Warnf("Me: failed to load user %s: %v", userID, err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.MeResponse{
		UserID:    user.UserId,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}
