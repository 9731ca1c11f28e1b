package content

import (
	"errors"
	"time"
)

// Content is a saved mind-map source owned by the caller that created it.
// Author is set once from the authenticated caller and never accepted as input.
type Content struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Author    string    `json:"author"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool { return p.Title == nil && p.Content == nil }

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("content not found")
	ErrInvalidInput    = errors.New("invalid input")
)
