package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
	"github.com/google/uuid"
)

type memEntry struct {
	seq uint64
	c   content.Content
}

// MemoryRepo is an in-memory Repository used when MongoDB is not configured
// and in unit tests. Records are copied in and out so callers never share
// state with the store.
type MemoryRepo struct {
	mu    sync.RWMutex
	seq   uint64
	store map[string]*memEntry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*memEntry)}
}

func (m *MemoryRepo) Insert(ctx context.Context, c *content.Content) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	rec := *c
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.store[rec.ID] = &memEntry{seq: m.seq, c: rec}
	return rec.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*content.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	out := e.c
	return &out, nil
}

func (m *MemoryRepo) ListByAuthor(ctx context.Context, author string) ([]*content.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*memEntry, 0)
	for _, e := range m.store {
		if e.c.Author == author {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })
	out := make([]*content.Content, 0, len(entries))
	for _, e := range entries {
		c := e.c
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemoryRepo) Patch(ctx context.Context, id string, p content.Patch) (*content.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	if p.Title != nil {
		e.c.Title = *p.Title
	}
	if p.Content != nil {
		e.c.Content = *p.Content
	}
	e.c.UpdatedAt = time.Now().UTC()
	out := e.c
	return &out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return content.ErrNotFound
	}
	delete(m.store, id)
	return nil
}
