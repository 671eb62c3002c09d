package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles an account can hold. Only admins may approve pending accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is the domain entity for a registered user and their ledger.
// Balance is always the net sum of Transactions, starting from zero.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Approved     bool
	Role         string
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
