package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a history entry.
type EntryKind string

const (
	KindCreate      EntryKind = "create"
	KindDeposit     EntryKind = "deposit"
	KindWithdraw    EntryKind = "withdraw"
	KindTransferOut EntryKind = "transfer_out"
	KindTransferIn  EntryKind = "transfer_in"
)

// Sign returns +1 for kinds that increase a balance and -1 for kinds that
// decrease it. Create entries carry a zero amount so either sign works.
func (k EntryKind) Sign() int {
	switch k {
	case KindWithdraw, KindTransferOut:
		return -1
	default:
		return 1
	}
}

// HistoryEntry is one immutable balance-affecting event.
type HistoryEntry struct {
	Time   time.Time       `json:"time"` // UTC
	Kind   EntryKind       `json:"kind"`
	Amount decimal.Decimal `json:"amount"` // non-negative magnitude
	Note   string          `json:"note,omitempty"`
}

// Account is one ledger account. History is append-only, oldest first;
// Balance must equal the signed replay of History at all times.
type Account struct {
	Number  string          `json:"number"`
	Owner   string          `json:"owner"`
	PINHash string          `json:"pin_hash"` // bcrypt, never logged
	Balance decimal.Decimal `json:"balance"`
	History []HistoryEntry  `json:"history"`
}

// Clone returns a deep copy so callers never alias store-internal state.
func (a Account) Clone() Account {
	cp := a
	cp.History = make([]HistoryEntry, len(a.History))
	copy(cp.History, a.History)
	return cp
}
