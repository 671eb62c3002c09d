package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	defaultTTL       = 24 * time.Hour
)

// Claims is what a session carries: who the caller is and what they may do.
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

// Store manages sessions in Redis. A session is an opaque id mapped to Claims.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Issue stores a new session for the given claims and returns its id.
func (s *Store) Issue(ctx context.Context, c Claims) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, b, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Verify resolves a session id to its claims. ok is false if the session does
// not exist or has expired.
func (s *Store) Verify(ctx context.Context, id string) (Claims, bool) {
	b, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		return Claims{}, false
	}
	var c Claims
	if err := json.Unmarshal(b, &c); err != nil {
		return Claims{}, false
	}
	return c, true
}

// Revoke removes a session by id.
func (s *Store) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
