package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted after a ledger transaction commits.
type TransactionCompleted struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher emits ledger events to interested consumers. Publishing is
// best-effort: the ledger write has already committed by the time an event
// goes out.
type Publisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
}
