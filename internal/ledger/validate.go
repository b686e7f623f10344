package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/teller-dev/teller/internal/model"
)

// InvariantError describes a single invariant violation on an account.
type InvariantError struct {
	Invariant   int
	Number      string
	Description string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Number, e.Description)
}

// ValidateAccount enforces 5 invariants on an account record:
//
//  1. Balance is non-negative.
//  2. Balance equals the signed replay of the history.
//  3. The first entry is a zero-amount create; no later entry is a create.
//  4. Entry amounts are non-negative with at most two decimal places.
//  5. Entry timestamps are non-decreasing.
func ValidateAccount(acct model.Account) []InvariantError {
	var errs []InvariantError

	if acct.Balance.IsNegative() {
		errs = append(errs, InvariantError{
			Invariant:   1,
			Number:      acct.Number,
			Description: fmt.Sprintf("negative balance %s", acct.Balance.StringFixed(2)),
		})
	}

	replayed := decimal.Zero
	for _, e := range acct.History {
		if e.Kind.Sign() < 0 {
			replayed = replayed.Sub(e.Amount)
		} else {
			replayed = replayed.Add(e.Amount)
		}
	}
	if !replayed.Equal(acct.Balance) {
		errs = append(errs, InvariantError{
			Invariant:   2,
			Number:      acct.Number,
			Description: fmt.Sprintf("balance %s != history replay %s", acct.Balance.StringFixed(2), replayed.StringFixed(2)),
		})
	}

	if len(acct.History) == 0 {
		errs = append(errs, InvariantError{
			Invariant:   3,
			Number:      acct.Number,
			Description: "history missing its create entry",
		})
	}
	for i, e := range acct.History {
		isCreate := e.Kind == model.KindCreate
		if i == 0 && (!isCreate || !e.Amount.IsZero()) {
			errs = append(errs, InvariantError{
				Invariant:   3,
				Number:      acct.Number,
				Description: "first history entry must be a zero-amount create",
			})
		}
		if i > 0 && isCreate {
			errs = append(errs, InvariantError{
				Invariant:   3,
				Number:      acct.Number,
				Description: fmt.Sprintf("entry %d: create after account creation", i),
			})
		}
	}

	hundred := decimal.NewFromInt(100)
	for i, e := range acct.History {
		if e.Amount.IsNegative() {
			errs = append(errs, InvariantError{
				Invariant:   4,
				Number:      acct.Number,
				Description: fmt.Sprintf("entry %d: negative amount %s", i, e.Amount),
			})
		}
		if !e.Amount.Mul(hundred).Equal(e.Amount.Mul(hundred).Floor()) {
			errs = append(errs, InvariantError{
				Invariant:   4,
				Number:      acct.Number,
				Description: fmt.Sprintf("entry %d: amount %s has more than 2 decimal places", i, e.Amount),
			})
		}
	}

	for i := 1; i < len(acct.History); i++ {
		if acct.History[i].Time.Before(acct.History[i-1].Time) {
			errs = append(errs, InvariantError{
				Invariant:   5,
				Number:      acct.Number,
				Description: fmt.Sprintf("entry %d: timestamp precedes entry %d", i, i-1),
			})
		}
	}

	return errs
}
