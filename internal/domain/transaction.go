package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds. A ledger entry is exactly one of these.
const (
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
)

// Transaction is one immutable ledger entry for an account.
// Amount is always positive; the kind decides the sign applied to the balance.
type Transaction struct {
	ID         string
	AccountID  string
	Kind       string
	Amount     decimal.Decimal
	OccurredAt time.Time
}

// Delta returns the signed balance change this transaction represents.
func (t Transaction) Delta() decimal.Decimal {
	if t.Kind == KindWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}
