package domain

import "errors"

// Domain errors. Handlers map these to HTTP statuses; nothing below the
// handler layer knows about status codes.
var (
	// ErrEmailTaken: registration with an email that already has an account.
	ErrEmailTaken = errors.New("email already exists")

	// ErrMissingFields: registration without a name, email or password.
	ErrMissingFields = errors.New("name, email and password required")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAwaitingApproval: credentials are valid but an admin has not
	// approved the account yet.
	ErrAwaitingApproval = errors.New("account awaiting approval")

	// ErrNotFound: no account with the given id.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds: a withdrawal would drive the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAmountNotPositive: transaction amount must be strictly positive.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrUnknownKind: transaction kind is neither deposit nor withdraw.
	ErrUnknownKind = errors.New("unknown transaction kind")
)
