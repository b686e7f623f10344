package ledger

import (
	"errors"
	"fmt"
)

// Domain errors. All of these reject a single operation and leave both the
// in-memory state and the backing store untouched.
var (
	// ErrAccountNotFound means the account number is unknown.
	ErrAccountNotFound = errors.New("account not found")

	// ErrBadPIN means the credential did not match the stored hash.
	ErrBadPIN = errors.New("invalid PIN")

	// ErrInvalidAmount means the amount is non-positive or finer than cents.
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

	// ErrInsufficientFunds means the amount exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount means a transfer named its own source as recipient.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrBusy means an account lock could not be acquired in time.
	ErrBusy = errors.New("account busy, try again")
)

// ValidationError rejects malformed input to account creation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
