package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "chatmarkmap_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("KEYCLOAK_URL", "http://kc.local/")
	t.Setenv("KEYCLOAK_REALM", "maps")
	t.Setenv("KEYCLOAK_CLIENT_ID", "web")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "chatmarkmap_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "http://kc.local/realms/maps", cfg.OIDC.Issuer)
	require.Equal(t, "web", cfg.OIDC.ClientID)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	require.Equal(t, "5001", cfg.Server.Port)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Empty(t, cfg.MongoDB.URI, "mongo is optional")
	require.Equal(t, "chatmarkmap", cfg.MinIO.Bucket)
	require.False(t, cfg.RateLimit.Enabled)
	require.False(t, cfg.OIDC.AllowInsecure)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "0")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_IssuerNeedsClientID(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://id.example.com")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "OIDC_CLIENT_ID")
}
