package middleware

import (
	"net/http"
	"strings"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/internal/revocation"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// gin context keys set by AuthMiddleware
const (
	ClaimsKey      = "claims"
	CallerKey      = "caller"
	AccessTokenKey = "accessToken"
)

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier.
// On success the caller is stored both in the gin context and in the request context,
// so handlers and services can read it with identity.FromContext.
// A nil revocation store disables the revocation check.
func AuthMiddleware(ver identity.Verifier, revoked *revocation.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		token, ok := bearer(auth)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		isRevoked, err := revoked.IsRevoked(c.Request.Context(), token)
		if err != nil {
			logger.Errorf("revocation lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token check failed"})
			return
		}
		if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debugf("token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		caller := identity.FromClaims(claims)
		if !caller.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(CallerKey, caller)
		c.Set(AccessTokenKey, token)
		c.Request = c.Request.WithContext(identity.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// callerKey picks the rate-limit key: the authenticated subject when present, otherwise the client IP.
func callerKey(c *gin.Context) string {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(identity.Caller); ok && caller.Authenticated() {
			return "sub:" + caller.Subject
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
