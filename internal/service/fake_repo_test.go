package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
)

// fakeRepo is an in-memory AccountRepo. A single mutex gives it the same
// atomicity the Postgres conditional update provides, so the concurrency
// properties of the services can be exercised without a database.
type fakeRepo struct {
	mu       sync.Mutex
	accounts map[string]dom.Account
	txs      map[string][]dom.Transaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts: make(map[string]dom.Account),
		txs:      make(map[string][]dom.Transaction),
	}
}

func (f *fakeRepo) Create(_ context.Context, a dom.Account) (dom.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == a.Email {
			return dom.Account{}, &pgconn.PgError{Code: "23505"}
		}
	}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (dom.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return dom.Account{}, pgx.ErrNoRows
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (dom.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return dom.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (f *fakeRepo) ListUnapproved(_ context.Context) ([]dom.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []dom.Account
	for _, a := range f.accounts {
		if !a.Approved {
			list = append(list, a)
		}
	}
	return list, nil
}

func (f *fakeRepo) SetApproved(_ context.Context, id string) (dom.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return dom.Account{}, pgx.ErrNoRows
	}
	a.Approved = true
	f.accounts[id] = a
	return a, nil
}

func (f *fakeRepo) ApplyTransaction(_ context.Context, t dom.Transaction) (dom.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[t.AccountID]
	if !ok {
		return dom.Account{}, dom.ErrNotFound
	}
	next := a.Balance.Add(t.Delta())
	if next.Cmp(decimal.Zero) < 0 {
		return dom.Account{}, dom.ErrInsufficientFunds
	}
	a.Balance = next
	f.accounts[t.AccountID] = a
	f.txs[t.AccountID] = append(f.txs[t.AccountID], t)
	return a, nil
}

func (f *fakeRepo) GetStatement(_ context.Context, accountID string) (dom.Account, []dom.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok {
		return dom.Account{}, nil, pgx.ErrNoRows
	}
	out := make([]dom.Transaction, len(f.txs[accountID]))
	copy(out, f.txs[accountID])
	return a, out, nil
}

func (f *fakeRepo) ListTransactions(_ context.Context, accountID string) ([]dom.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dom.Transaction, len(f.txs[accountID]))
	copy(out, f.txs[accountID])
	return out, nil
}
