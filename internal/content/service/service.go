package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
	"github.com/chatmarkmap/chatmarkmap/api/internal/content/repository"
	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/logger"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateInput carries the caller-supplied fields of a new record.
// The owner is always the caller, so there is no Author field.
type CreateInput struct {
	Title   string
	Prompt  string
	Content string
}

// Service defines the owner-scoped content operations used by the handler layer.
// Every method fails with content.ErrUnauthenticated for an unauthenticated
// caller before touching the store.
type Service interface {
	List(ctx context.Context, caller identity.Caller) ([]*content.Content, error)
	Create(ctx context.Context, caller identity.Caller, in CreateInput) (string, error)
	// GetByID returns (nil, nil) when the record does not exist.
	GetByID(ctx context.Context, caller identity.Caller, id string) (*content.Content, error)
	// UpdateContent and UpdateTitle treat a nil or empty value as "no change".
	UpdateContent(ctx context.Context, caller identity.Caller, id string, value *string) (*content.Content, error)
	UpdateTitle(ctx context.Context, caller identity.Caller, id string, value *string) (*content.Content, error)
	Delete(ctx context.Context, caller identity.Caller, id string) error
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller owns the client and collection lifecycle.
func NewMongoService(ctx context.Context, col *mongo.Collection) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo), nil
}

// New wraps any Repository with the ownership rules.
func New(repo repository.Repository) Service {
	return &ownedService{repo: repo}
}

type ownedService struct {
	repo repository.Repository
}

func (s *ownedService) List(ctx context.Context, caller identity.Caller) (out []*content.Content, err error) {
	defer observe("list", &err)
	if !caller.Authenticated() {
		return nil, content.ErrUnauthenticated
	}
	out, err = s.repo.ListByAuthor(ctx, caller.Subject)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	return out, nil
}

func (s *ownedService) Create(ctx context.Context, caller identity.Caller, in CreateInput) (id string, err error) {
	defer observe("create", &err)
	if !caller.Authenticated() {
		return "", content.ErrUnauthenticated
	}
	if in.Prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", content.ErrInvalidInput)
	}
	if in.Content == "" {
		return "", fmt.Errorf("%w: content is required", content.ErrInvalidInput)
	}
	id, err = s.repo.Insert(ctx, &content.Content{
		Title:   in.Title,
		Author:  caller.Subject,
		Prompt:  in.Prompt,
		Content: in.Content,
	})
	if err != nil {
		return "", fmt.Errorf("insert content: %w", err)
	}
	logger.Debugf("content created id=%s author=%s", id, caller.Subject)
	return id, nil
}

func (s *ownedService) GetByID(ctx context.Context, caller identity.Caller, id string) (c *content.Content, err error) {
	defer observe("get", &err)
	if !caller.Authenticated() {
		return nil, content.ErrUnauthenticated
	}
	c, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	if c == nil {
		return nil, nil
	}
	if c.Author != caller.Subject {
		return nil, content.ErrForbidden
	}
	return c, nil
}

func (s *ownedService) UpdateContent(ctx context.Context, caller identity.Caller, id string, value *string) (c *content.Content, err error) {
	defer observe("update_content", &err)
	return s.patch(ctx, caller, id, content.Patch{Content: nonEmpty(value)})
}

func (s *ownedService) UpdateTitle(ctx context.Context, caller identity.Caller, id string, value *string) (c *content.Content, err error) {
	defer observe("update_title", &err)
	return s.patch(ctx, caller, id, content.Patch{Title: nonEmpty(value)})
}

func (s *ownedService) Delete(ctx context.Context, caller identity.Caller, id string) (err error) {
	defer observe("delete", &err)
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	logger.Debugf("content deleted id=%s author=%s", id, caller.Subject)
	return nil
}

func (s *ownedService) patch(ctx context.Context, caller identity.Caller, id string, p content.Patch) (*content.Content, error) {
	cur, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return cur, nil
	}
	updated, err := s.repo.Patch(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("patch content %s: %w", id, err)
	}
	return updated, nil
}

// owned loads an existing record the caller may mutate. Missing records are
// reported as content.ErrNotFound, records of other authors as content.ErrForbidden.
func (s *ownedService) owned(ctx context.Context, caller identity.Caller, id string) (*content.Content, error) {
	if !caller.Authenticated() {
		return nil, content.ErrUnauthenticated
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	if cur == nil {
		return nil, content.ErrNotFound
	}
	if cur.Author != caller.Subject {
		return nil, content.ErrForbidden
	}
	return cur, nil
}

// nonEmpty maps "" to nil so an empty update keeps the stored value.
func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func observe(op string, errp *error) {
	metrics.ContentOps.WithLabelValues(op, Outcome(*errp)).Inc()
}

// Outcome classifies an error returned by Service into a short label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, content.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, content.ErrForbidden):
		return "forbidden"
	case errors.Is(err, content.ErrNotFound):
		return "not_found"
	case errors.Is(err, content.ErrInvalidInput):
		return "invalid"
	}
	return "error"
}
