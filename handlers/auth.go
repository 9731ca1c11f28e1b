package handlers

import (
	"net/http"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/internal/revocation"
	"github.com/chatmarkmap/chatmarkmap/api/internal/tokens"
	"github.com/chatmarkmap/chatmarkmap/api/internal/users"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/logger"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler holds dependencies of the caller-facing account endpoints.
// Sign-in itself happens at the identity provider.
type AuthHandler struct {
	usersSvc *users.Service
	revoked  *revocation.Store
}

func NewAuthHandler(u *users.Service, r *revocation.Store) *AuthHandler {
	return &AuthHandler{usersSvc: u, revoked: r}
}

// Register mounts POST /auth/logout and GET /api/v1/me. Both groups must run AuthMiddleware.
func (h *AuthHandler) Register(authGroup, apiV1 *gin.RouterGroup) {
	authGroup.POST("/logout", h.Logout)
	apiV1.GET("/me", h.Me)
}

// Logout revokes the presented access token until it would have expired.
// Tokens without a readable exp claim cannot be sized and are left alone.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := c.GetString(middleware.AccessTokenKey)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	exp, err := tokens.ExpiresAt(raw)
	if err != nil {
		logger.Debugf("logout: token expiry unreadable: %v", err)
		c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": false})
		return
	}
	ttl := time.Until(exp)
	if h.revoked == nil || ttl <= 0 {
		c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": false})
		return
	}
	if err := h.revoked.Revoke(c.Request.Context(), raw, ttl); err != nil {
		logger.Errorf("failed to revoke access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": true})
}

// Me returns the caller's stored profile, recording it on first sight.
func (h *AuthHandler) Me(c *gin.Context) {
	caller := identity.FromContext(c.Request.Context())
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if h.usersSvc == nil {
		c.JSON(http.StatusOK, gin.H{"caller": caller})
		return
	}
	u, err := h.usersSvc.UpsertCaller(c.Request.Context(), caller)
	if err != nil {
		logger.Errorf("user upsert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user upsert failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
