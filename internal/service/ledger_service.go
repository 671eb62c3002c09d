package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kiliiie/newport-bank-backend/internal/cache"
	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/events"
	"github.com/kiliiie/newport-bank-backend/internal/repo"
)

// LedgerService applies deposit/withdraw transactions to account balances.
// The non-negative balance invariant is enforced by the repository's atomic
// conditional update; this layer validates input and keeps the cache and
// event stream in step with committed writes.
type LedgerService struct {
	repo      repo.AccountRepo
	cache     *cache.StatementCache
	publisher events.Publisher
}

// NewLedgerService creates a LedgerService. cache and publisher may be nil.
func NewLedgerService(r repo.AccountRepo, c *cache.StatementCache, p events.Publisher) *LedgerService {
	return &LedgerService{repo: r, cache: c, publisher: p}
}

// Apply records one transaction against the account and returns the updated
// account. The amount must be strictly positive; a withdrawal exceeding the
// balance fails with dom.ErrInsufficientFunds and writes nothing.
func (s *LedgerService) Apply(ctx context.Context, accountID, kind string, amount decimal.Decimal) (dom.Account, error) {
	if kind != dom.KindDeposit && kind != dom.KindWithdraw {
		return dom.Account{}, dom.ErrUnknownKind
	}
	// A negative withdraw would inflate the balance; reject before touching
	// the store.
	if amount.Cmp(decimal.Zero) <= 0 {
		return dom.Account{}, dom.ErrAmountNotPositive
	}

	t := dom.Transaction{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Kind:       kind,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
	a, err := s.repo.ApplyTransaction(ctx, t)
	if err != nil {
		return dom.Account{}, err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, accountID)
	}
	s.publish(ctx, t, a)
	return a, nil
}

// publish is best-effort: the transaction has committed, so a broker failure
// is logged and the request still succeeds.
func (s *LedgerService) publish(ctx context.Context, t dom.Transaction, a dom.Account) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.TransactionCompleted{
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		Kind:          t.Kind,
		Amount:        t.Amount,
		Balance:       a.Balance,
		OccurredAt:    t.OccurredAt,
	})
	if err != nil {
		log.Printf("publish transaction event %s: %v", t.ID, err)
	}
}
