package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps revoked access tokens in Redis until they would have expired.
// A nil *Store or a Store without a client is a no-op: nothing is revoked.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a revocation store. Prefix may be empty.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "revoked:access:"
	}
	return &Store{client: client, prefix: prefix}
}

// tokens are stored hashed so the raw bearer value never lands in Redis
func (s *Store) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Revoke marks token as revoked for ttl. Non-positive ttl is ignored.
func (s *Store) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if s == nil || s.client == nil || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(token), "1", ttl).Err()
}

// IsRevoked reports whether token was revoked and has not yet expired.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
