package middleware

import (
	"net/http"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitMiddleware_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Minute))
	r.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/r"))
	require.Equal(t, http.StatusOK, get(r, "/r"))

	// 60 per window
	for i := 0; i < 58; i++ {
		require.Equal(t, http.StatusOK, get(r, "/r"))
	}
	require.Equal(t, http.StatusTooManyRequests, get(r, "/r"))

	// the window key expires
	m.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, get(r, "/r"))
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 0.5, 1, time.Second))
	r.GET("/r", func(c *gin.Context) { c.Status(200) })

	require.Equal(t, http.StatusOK, get(r, "/r"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/r"))
}
