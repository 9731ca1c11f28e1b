package repository

import (
	"context"

	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
)

// Repository is the document store behind the content service.
// Implementations own id assignment, per-record atomicity and the
// insertion order used by ListByAuthor.
type Repository interface {
	// Get returns (nil, nil) when no record has the id.
	Get(ctx context.Context, id string) (*content.Content, error)
	Insert(ctx context.Context, c *content.Content) (string, error)
	// Patch applies p and returns the stored record; content.ErrNotFound when missing.
	Patch(ctx context.Context, id string, p content.Patch) (*content.Content, error)
	// Delete returns content.ErrNotFound when missing.
	Delete(ctx context.Context, id string) error
	// ListByAuthor returns the author's records, most recently created first.
	ListByAuthor(ctx context.Context, author string) ([]*content.Content, error)
}
