package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/kiliiie/newport-bank-backend/internal/cache"
	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/repo"
	"github.com/kiliiie/newport-bank-backend/internal/utils"
)

// AccountService handles registration, the login approval gate, and admin
// approval of pending accounts.
type AccountService struct {
	repo  repo.AccountRepo
	cache *cache.StatementCache
	sf    singleflight.Group
}

// NewAccountService creates an AccountService. If c is nil, statement caching
// is disabled.
func NewAccountService(r repo.AccountRepo, c *cache.StatementCache) *AccountService {
	return &AccountService{repo: r, cache: c}
}

// Register creates a new unapproved account with a hashed password.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (dom.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return dom.Account{}, dom.ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.Account{}, err
	}
	a, err := s.repo.Create(ctx, dom.Account{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Approved:     false,
		Role:         dom.RoleUser,
		Balance:      decimal.Zero,
	})
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Account{}, dom.ErrEmailTaken
		}
		return dom.Account{}, err
	}
	return a, nil
}

// Login checks credentials and the approval gate; returns the account if the
// caller may open a session. Unknown email and wrong password are deliberately
// indistinguishable; an unapproved account with valid credentials gets
// ErrAwaitingApproval instead of a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (dom.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return dom.Account{}, dom.ErrInvalidCredentials
	}
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, dom.ErrInvalidCredentials
		}
		return dom.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return dom.Account{}, dom.ErrInvalidCredentials
	}
	if !a.Approved {
		return dom.Account{}, dom.ErrAwaitingApproval
	}
	return a, nil
}

// Approve marks the account approved. Re-approving is a no-op success.
func (s *AccountService) Approve(ctx context.Context, id string) (dom.Account, error) {
	a, err := s.repo.SetApproved(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, dom.ErrNotFound
		}
		return dom.Account{}, err
	}
	s.invalidateStatement(ctx, id)
	return a, nil
}

// ListPending returns accounts awaiting approval.
func (s *AccountService) ListPending(ctx context.Context) ([]dom.Account, error) {
	return s.repo.ListUnapproved(ctx)
}

// Statement returns the account with its full transaction history.
func (s *AccountService) Statement(ctx context.Context, accountID string) (cache.Statement, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("statement:"+accountID, func() (interface{}, error) {
			if st, err := s.cache.Get(ctx, accountID); err == nil && st != nil {
				return *st, nil
			}
			// Capture the invalidation version before hitting the store: if
			// a ledger write lands while we load, the version moves on and
			// the entry written below is never served.
			version, verErr := s.cache.Version(ctx, accountID)
			st, err := s.loadStatement(ctx, accountID)
			if err != nil {
				return nil, err
			}
			if verErr == nil {
				_ = s.cache.Set(ctx, accountID, st, version)
			}
			return st, nil
		})
		if err != nil {
			return cache.Statement{}, err
		}
		return v.(cache.Statement), nil
	}
	return s.loadStatement(ctx, accountID)
}

// loadStatement reads balance and history from one store snapshot so the two
// can never be observed out of sync.
func (s *AccountService) loadStatement(ctx context.Context, accountID string) (cache.Statement, error) {
	a, txs, err := s.repo.GetStatement(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cache.Statement{}, dom.ErrNotFound
		}
		return cache.Statement{}, err
	}
	return cache.Statement{Account: a, Transactions: txs}, nil
}

func (s *AccountService) invalidateStatement(ctx context.Context, accountID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, accountID)
	}
}
