package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe checks one dependency. A nil error means healthy.
type Probe func(ctx context.Context) error

// RegisterHealth mounts /health (liveness) and /ready (all probes pass).
func RegisterHealth(r gin.IRoutes, probes map[string]Probe, started time.Time) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(probes))
		for name, probe := range probes {
			ok := probe(ctx) == nil
			deps[name] = ok
			ready = ready && ok
		}
		body := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(started).Round(time.Second).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}
