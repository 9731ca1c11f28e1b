package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken creates an HS256-signed access token for the caller.
func GenerateAccessToken(secret string, c identity.Caller, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	if !c.Authenticated() {
		return "", identity.ErrNoIdentity
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   c.Subject,
		"name":  c.Name,
		"email": c.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// HMACVerifier verifies tokens minted by GenerateAccessToken.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, raw string) (identity.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if sub, _ := claims["sub"].(string); sub == "" {
		return nil, identity.ErrNoIdentity
	}
	return identity.NewClaimsToken(claims), nil
}

// ExpiresAt returns the exp claim of a token without verifying it.
// Used to size revocation entries.
func ExpiresAt(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("exp claim not present")
	}
	return exp.Time, nil
}
