package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_VerifiesAndCarriesSubject(t *testing.T) {
	secret := "test-secret-32-bytes-should-be-long-enough"
	c := identity.Caller{Subject: "user-123", Name: "Test User", Email: "test@example.com"}
	tokenStr, err := GenerateAccessToken(secret, c, 2*time.Minute)
	require.NoError(t, err)

	tok, err := NewHMACVerifier(secret).Verify(context.Background(), tokenStr)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, c, identity.FromClaims(claims))
}

func TestGenerateAccessToken_RequiresSecretAndSubject(t *testing.T) {
	_, err := GenerateAccessToken("", identity.Caller{Subject: "x"}, time.Minute)
	require.Error(t, err)
	_, err = GenerateAccessToken("secret", identity.Caller{}, time.Minute)
	require.ErrorIs(t, err, identity.ErrNoIdentity)
}

func TestHMACVerifier_ExpiredTokenFails(t *testing.T) {
	secret := "another-secret-32-bytes-longgggg"
	claims := jwt.MapClaims{"sub": "u2", "exp": time.Now().Add(-time.Minute).Unix()}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = NewHMACVerifier(secret).Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestHMACVerifier_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateAccessToken("secret-one-32-bytes-xxxxxxxxxxxxxxxx", identity.Caller{Subject: "u3"}, time.Minute)
	require.NoError(t, err)
	_, err = NewHMACVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

// alg=none must never be accepted
func TestHMACVerifier_AlgNoneRejected(t *testing.T) {
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u-none","exp":9999999999}`))
	_, err := NewHMACVerifier("x").Verify(context.Background(), headerEnc+"."+payloadEnc+".")
	require.Error(t, err)
}

func TestHMACVerifier_TamperedPayload(t *testing.T) {
	secret := "tamper-test-secret-32-bytes-xxxxxxx"
	tokenStr, err := GenerateAccessToken(secret, identity.Caller{Subject: "user-t"}, 5*time.Minute)
	require.NoError(t, err)
	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payload), "user-t", "attacker", 1)))
	_, err = NewHMACVerifier(secret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestHMACVerifier_MissingSubjectRejected(t *testing.T) {
	secret := "nosub-secret-32-bytes-xxxxxxxxxxxx"
	claims := jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = NewHMACVerifier(secret).Verify(context.Background(), tokenStr)
	require.ErrorIs(t, err, identity.ErrNoIdentity)
}

func TestExpiresAt(t *testing.T) {
	tokenStr, err := GenerateAccessToken("s", identity.Caller{Subject: "u"}, time.Hour)
	require.NoError(t, err)
	exp, err := ExpiresAt(tokenStr)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	_, err = ExpiresAt("not-a-jwt")
	require.Error(t, err)
}
