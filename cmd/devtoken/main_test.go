package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/internal/tokens"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestRunMintsVerifiableToken(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"--sub", "alice", "--email", "a@x", "--ttl", "5m"}, &out, env(map[string]string{"JWT_SECRET": "s3cret-s3cret-s3cret"}))
	require.NoError(t, err)

	raw := strings.TrimSpace(out.String())
	tok, err := tokens.NewHMACVerifier("s3cret-s3cret-s3cret").Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	c := identity.FromClaims(claims)
	require.Equal(t, "alice", c.Subject)
	require.Equal(t, "a@x", c.Email)
}

func TestRunFlagSecretWins(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--sub", "bob", "--secret", "flag-secret-123456"}, &out, env(map[string]string{"JWT_SECRET": "env"})))
	_, err := tokens.NewHMACVerifier("flag-secret-123456").Verify(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run([]string{}, &out, env(nil)))
	require.Error(t, run([]string{"--sub", "a"}, &out, env(nil)), "missing secret")
	require.Error(t, run([]string{"--sub", "a", "--secret", "x", "--ttl", "-1s"}, &out, env(nil)))
	require.Error(t, run([]string{"--bogus"}, &out, env(nil)))
}
