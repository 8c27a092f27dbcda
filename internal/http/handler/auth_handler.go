package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchbase/accountd/internal/http/middleware"
	"github.com/launchbase/accountd/internal/service"
)

// AuthHandler exposes the signup/login/private surface.
type AuthHandler struct {
	Auth *service.AuthService
}

// NewAuthHandler wires the auth service into HTTP handlers.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Hello is a liveness greeting.
func (h *AuthHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello, I'm your backend"})
}

// SignUp creates an account. A successful signup returns no token; login is a
// separate step.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Email and password required"})
		return
	}

	result, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"msg":     "User created successfully",
		"email":   result.Email,
	})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Email and password required"})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Private serves the token-gated resource. The route is registered behind
// Auth.RequireToken, so claims are always present here.
func (h *AuthHandler) Private(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Invalid or expired token"})
		return
	}

	user, err := h.Auth.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		var authErr *service.AuthError
		if errors.As(err, &authErr) && authErr.Status == http.StatusNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Invalid or expired token"})
			return
		}
		respondAuthError(c, err, "Lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "This is a protected route",
		"user": gin.H{"email": user.Email},
	})
}

func respondAuthError(c *gin.Context, err error, fallbackMsg string) {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		c.JSON(authErr.Status, gin.H{"success": false, "msg": authErr.Msg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": fallbackMsg})
}
