package identity

import (
	"context"
	"errors"
)

// ErrNoIdentity is returned by Verifier implementations when a token carries
// no subject.
var ErrNoIdentity = errors.New("token has no subject")

// Token is a verified token that can expose its claims.
// It is satisfied by *oidc.IDToken and by the local verifiers in this package.
type Token interface {
	Claims(v interface{}) error
}

// Verifier turns a raw bearer token into a verified Token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Caller is the identity a request acts as. The zero value is the
// unauthenticated caller.
type Caller struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Authenticated reports whether the caller carries a subject.
func (c Caller) Authenticated() bool { return c.Subject != "" }

// FromClaims builds a Caller from a decoded claims map. Missing or non-string
// claims are left empty.
func FromClaims(claims map[string]interface{}) Caller {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if name == "" {
		name, _ = claims["preferred_username"].(string)
	}
	return Caller{Subject: sub, Email: email, Name: name}
}

type ctxKey struct{}

// WithCaller stores the caller in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller stored in ctx, or the unauthenticated caller.
func FromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(ctxKey{}).(Caller)
	return c
}
