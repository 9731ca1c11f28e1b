package users

import (
	"context"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertCaller records the caller's profile. Unauthenticated callers yield (nil, nil).
func (s *Service) UpsertCaller(ctx context.Context, c identity.Caller) (*User, error) {
	if !c.Authenticated() {
		return nil, nil
	}
	return s.repo.UpsertBySub(ctx, &User{Sub: c.Subject, Email: c.Email, Name: c.Name})
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*User, error) {
	return s.repo.GetBySub(ctx, sub)
}
