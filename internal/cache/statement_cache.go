package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
)

const (
	keyStatement    = "statement:"
	keyStatementVer = "statementver:"
)

// Statement is the cached view served by GET /me: the account snapshot plus
// its full transaction history, captured at the same instant.
type Statement struct {
	Account      dom.Account       `json:"account"`
	Transactions []dom.Transaction `json:"transactions"`
}

// entry is the stored form. Version pins the invalidation counter the
// statement was loaded under; Get drops entries written under an older one,
// so a load racing a write can never pin a pre-transaction view.
type entry struct {
	Version   int64     `json:"version"`
	Statement Statement `json:"statement"`
}

// StatementCache caches per-account statements in Redis.
type StatementCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatementCache returns a new StatementCache.
func NewStatementCache(rdb *redis.Client, ttl time.Duration) *StatementCache {
	return &StatementCache{rdb: rdb, ttl: ttl}
}

// Version returns the account's current invalidation counter. Callers read it
// before loading from the store and pass it to Set.
func (c *StatementCache) Version(ctx context.Context, accountID string) (int64, error) {
	v, err := c.rdb.Get(ctx, keyStatementVer+accountID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Get returns the cached statement for the account, or nil on miss. An entry
// written under a version older than the current one counts as a miss.
func (c *StatementCache) Get(ctx context.Context, accountID string) (*Statement, error) {
	b, err := c.rdb.Get(ctx, keyStatement+accountID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	current, err := c.Version(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if e.Version != current {
		return nil, nil
	}
	return &e.Statement, nil
}

// Set stores the statement under the version observed before it was loaded.
func (c *StatementCache) Set(ctx context.Context, accountID string, st Statement, version int64) error {
	b, err := json.Marshal(entry{Version: version, Statement: st})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyStatement+accountID, b, c.ttl).Err()
}

// Invalidate drops the cached statement (cache invalidation on write). The
// version bump comes first so a concurrent Get can never pair the old entry
// with the old counter once a write has landed.
func (c *StatementCache) Invalidate(ctx context.Context, accountID string) error {
	if err := c.rdb.Incr(ctx, keyStatementVer+accountID).Err(); err != nil {
		return err
	}
	return c.rdb.Del(ctx, keyStatement+accountID).Err()
}
