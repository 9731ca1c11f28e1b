package users

import (
	"context"
	"testing"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
)

type fakeRepo struct {
	lastUpsert *User
}

func (f *fakeRepo) UpsertBySub(ctx context.Context, u *User) (*User, error) {
	f.lastUpsert = u
	ret := *u
	ret.ID = "abcd1234"
	ret.CreatedAt = time.Now().UTC()
	ret.UpdatedAt = ret.CreatedAt
	return &ret, nil
}

func (f *fakeRepo) GetBySub(ctx context.Context, sub string) (*User, error) {
	return nil, nil
}

func TestUpsertCaller(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.UpsertCaller(ctx, identity.Caller{Subject: "sub-123", Email: "x@example.com", Name: "X User"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.Sub != "sub-123" || u.Email != "x@example.com" || u.Name != "X User" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.ID == "" {
		t.Fatalf("expected returned user to have an ID set by repo")
	}
	if repo.lastUpsert == nil {
		t.Fatal("expected repository UpsertBySub to be called")
	}

	repo.lastUpsert = nil
	u2, err := svc.UpsertCaller(ctx, identity.Caller{Email: "y@e.com"})
	if err != nil {
		t.Fatalf("unexpected error on missing sub: %v", err)
	}
	if u2 != nil || repo.lastUpsert != nil {
		t.Fatalf("expected no upsert when subject missing, got: %v", u2)
	}
}

func TestMemoryUserRepository_UpsertKeepsCreatedAt(t *testing.T) {
	svc := NewService(NewMemoryUserRepository())
	ctx := context.Background()

	first, err := svc.UpsertCaller(ctx, identity.Caller{Subject: "s1", Email: "a@x", Name: "A"})
	if err != nil || first == nil {
		t.Fatalf("upsert: %v %v", first, err)
	}
	second, err := svc.UpsertCaller(ctx, identity.Caller{Subject: "s1", Email: "b@x", Name: "B"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("identity of stored user changed: %+v vs %+v", first, second)
	}
	got, _ := svc.GetBySub(ctx, "s1")
	if got == nil || got.Email != "b@x" || got.Name != "B" {
		t.Fatalf("GetBySub = %+v", got)
	}
	if missing, _ := svc.GetBySub(ctx, "nobody"); missing != nil {
		t.Fatalf("expected nil for unknown subject, got %+v", missing)
	}
}
