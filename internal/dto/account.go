package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=120"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful login, alongside the session cookie.
type LoginResponse struct {
	OK      bool            `json:"ok"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountResponse is the outward view of an account. The credential hash is
// never part of it.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Approved  bool            `json:"approved"`
	Role      string          `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// PendingAccountsResponse lists accounts awaiting approval.
type PendingAccountsResponse struct {
	Items []AccountResponse `json:"items"`
}
