package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/logger"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/metrics"
	"github.com/google/uuid"
)

const contentType = "text/markdown; charset=utf-8"

// ObjectStore is the blob storage the snapshots are written to.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Service uploads mind-map sources and hands out presigned download URLs.
// Callers are expected to have checked ownership of the content already.
type Service struct {
	objects ObjectStore
	ledger  Ledger
	expiry  time.Duration
}

func NewService(objects ObjectStore, ledger Ledger, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Service{objects: objects, ledger: ledger, expiry: expiry}
}

// objectKey keeps one prefix per author without exposing the raw subject.
func objectKey(c *content.Content) string {
	sum := sha256.Sum256([]byte(c.Author))
	return fmt.Sprintf("contents/%s/%s/%s.md", hex.EncodeToString(sum[:8]), c.ID, uuid.NewString())
}

// Export uploads the current source of c and records it as the latest export.
func (s *Service) Export(ctx context.Context, c *content.Content) (*Record, error) {
	key := objectKey(c)
	body := c.Content
	if err := s.objects.Put(ctx, key, strings.NewReader(body), int64(len(body)), contentType); err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	rec := &Record{ContentID: c.ID, Author: c.Author, Key: key, Size: int64(len(body)), CreatedAt: time.Now().UTC()}
	if err := s.ledger.Save(ctx, rec); err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Exports.WithLabelValues("ok").Inc()
	logger.Debugf("exported content %s to %s (%d bytes)", c.ID, key, rec.Size)
	return s.withURL(ctx, rec)
}

// Latest returns the latest export of contentID with a fresh URL, or nil.
func (s *Service) Latest(ctx context.Context, contentID string) (*Record, error) {
	rec, err := s.ledger.Latest(ctx, contentID)
	if err != nil || rec == nil {
		return nil, err
	}
	return s.withURL(ctx, rec)
}

// Forget drops the ledger entry; uploaded objects are left to bucket lifecycle rules.
func (s *Service) Forget(ctx context.Context, contentID string) error {
	return s.ledger.Forget(ctx, contentID)
}

func (s *Service) withURL(ctx context.Context, rec *Record) (*Record, error) {
	u, err := s.objects.PresignGet(ctx, rec.Key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	rec.URL = u
	return rec, nil
}
