package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
)

// AccountRepo provides account and ledger persistence.
type AccountRepo interface {
	Create(ctx context.Context, a dom.Account) (dom.Account, error)
	GetByEmail(ctx context.Context, email string) (dom.Account, error)
	GetByID(ctx context.Context, id string) (dom.Account, error)
	ListUnapproved(ctx context.Context) ([]dom.Account, error)
	SetApproved(ctx context.Context, id string) (dom.Account, error)

	// ApplyTransaction atomically adjusts the account balance and appends the
	// ledger entry. The balance update is conditional: it takes effect only if
	// the resulting balance stays non-negative, otherwise nothing is written
	// and domain.ErrInsufficientFunds is returned. Returns domain.ErrNotFound
	// if the account does not exist.
	ApplyTransaction(ctx context.Context, t dom.Transaction) (dom.Account, error)

	// GetStatement reads the account and its full history from one snapshot,
	// so the returned balance always equals the net sum of the transactions.
	GetStatement(ctx context.Context, accountID string) (dom.Account, []dom.Transaction, error)

	ListTransactions(ctx context.Context, accountID string) ([]dom.Transaction, error)
}

// PGAccountRepo implements AccountRepo with Postgres.
type PGAccountRepo struct {
	db *pgxpool.Pool
}

// NewPGAccountRepo returns a new PGAccountRepo.
func NewPGAccountRepo(db *pgxpool.Pool) *PGAccountRepo {
	return &PGAccountRepo{db: db}
}

const accountCols = `id, name, email, password_hash, approved, role, balance, created_at`

func scanAccount(row pgx.Row) (dom.Account, error) {
	var a dom.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Approved, &a.Role, &a.Balance, &a.CreatedAt)
	return a, err
}

// Create inserts a new account and returns it. A duplicate email surfaces as
// a unique violation (code 23505) for the service layer to translate.
func (r *PGAccountRepo) Create(ctx context.Context, a dom.Account) (dom.Account, error) {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, approved, role, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountCols
	return scanAccount(r.db.QueryRow(ctx, query,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Approved, a.Role, a.Balance))
}

// GetByEmail returns the account registered under email.
func (r *PGAccountRepo) GetByEmail(ctx context.Context, email string) (dom.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE email = $1`, email))
}

// GetByID returns the account with the given id.
func (r *PGAccountRepo) GetByID(ctx context.Context, id string) (dom.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, id))
}

// ListUnapproved returns all accounts still awaiting approval.
func (r *PGAccountRepo) ListUnapproved(ctx context.Context) ([]dom.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE approved = FALSE ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Account
	for rows.Next() {
		var a dom.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Approved,
			&a.Role, &a.Balance, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// SetApproved marks the account approved and returns it. Re-approving an
// already approved account is a no-op success.
func (r *PGAccountRepo) SetApproved(ctx context.Context, id string) (dom.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`UPDATE accounts SET approved = TRUE WHERE id = $1 RETURNING `+accountCols, id))
}

func (r *PGAccountRepo) ApplyTransaction(ctx context.Context, t dom.Transaction) (dom.Account, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Account{}, err
	}
	defer tx.Rollback(ctx)

	// Conditional update closes the check-then-act race: the balance check and
	// the write are one statement, so two concurrent withdrawals can never
	// both pass on the same stale balance.
	query := `
		UPDATE accounts SET balance = balance + $2
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING ` + accountCols
	a, err := scanAccount(tx.QueryRow(ctx, query, t.AccountID, t.Delta()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, r.rejectReason(ctx, t.AccountID)
		}
		return dom.Account{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (id, account_id, kind, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.AccountID, t.Kind, t.Amount, t.OccurredAt)
	if err != nil {
		return dom.Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Account{}, err
	}
	return a, nil
}

// rejectReason tells a missing account apart from a failed balance condition.
func (r *PGAccountRepo) rejectReason(ctx context.Context, accountID string) error {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM accounts WHERE id = $1`, accountID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.ErrNotFound
	}
	if err != nil {
		return err
	}
	return dom.ErrInsufficientFunds
}

// transactionsQuery orders by the insertion sequence, not the timestamp:
// two entries can share a timestamp, the sequence cannot collide.
const transactionsQuery = `
	SELECT id, account_id, kind, amount, occurred_at
	FROM transactions WHERE account_id = $1
	ORDER BY seq`

func collectTransactions(rows pgx.Rows) ([]dom.Transaction, error) {
	defer rows.Close()
	var list []dom.Transaction
	for rows.Next() {
		var t dom.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.OccurredAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetStatement returns the account row and its history from one repeatable
// read snapshot. A ledger write committing between the two reads cannot make
// the balance disagree with the history sum.
func (r *PGAccountRepo) GetStatement(ctx context.Context, accountID string) (dom.Account, []dom.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return dom.Account{}, nil, err
	}
	defer tx.Rollback(ctx)

	a, err := scanAccount(tx.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, accountID))
	if err != nil {
		return dom.Account{}, nil, err
	}
	rows, err := tx.Query(ctx, transactionsQuery, accountID)
	if err != nil {
		return dom.Account{}, nil, err
	}
	list, err := collectTransactions(rows)
	if err != nil {
		return dom.Account{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Account{}, nil, err
	}
	return a, list, nil
}

// ListTransactions returns the account's ledger entries in application order.
func (r *PGAccountRepo) ListTransactions(ctx context.Context, accountID string) ([]dom.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionsQuery, accountID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

var _ AccountRepo = (*PGAccountRepo)(nil)
