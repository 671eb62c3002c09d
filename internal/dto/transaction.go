package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRequest is the JSON body for POST /transactions.
type TransactionRequest struct {
	Type   string          `json:"type" binding:"required,oneof=deposit withdraw"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TransactionResponse is one ledger entry in a statement.
type TransactionResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ApplyResponse is returned after a transaction is recorded.
type ApplyResponse struct {
	OK      bool            `json:"ok"`
	Balance decimal.Decimal `json:"balance"`
}

// StatementResponse is the authenticated caller's own profile and ledger.
type StatementResponse struct {
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}
