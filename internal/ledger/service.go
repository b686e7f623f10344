// Package ledger enforces the business rules for balance-affecting
// operations: amount validity, non-negative balances, atomic dual-account
// transfers, and the pairing of every mutation with a history entry.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/teller-dev/teller/internal/id"
	"github.com/teller-dev/teller/internal/model"
)

// Vault is the durable account store the ledger operates on. Update must be
// atomic: either the mutation is applied and persisted, or neither happens.
type Vault interface {
	Get(number string) (model.Account, error)
	Update(fn func(accounts map[string]*model.Account) error) error
}

// Service provides balance operations on authenticated accounts.
type Service struct {
	vault       Vault
	log         *zap.Logger
	lockTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted // per account number
}

// TransferResult carries both post-transfer balances.
type TransferResult struct {
	SourceBalance decimal.Decimal
	DestBalance   decimal.Decimal
}

// NewService creates a ledger Service over a vault. Lock acquisition waits at
// most lockTimeout before failing with ErrBusy.
func NewService(vault Vault, lockTimeout time.Duration, log *zap.Logger) *Service {
	return &Service{
		vault:       vault,
		log:         log,
		lockTimeout: lockTimeout,
		locks:       make(map[string]*semaphore.Weighted),
	}
}

// Balance returns the current balance. Pure read.
func (s *Service) Balance(h Handle) (decimal.Decimal, error) {
	acct, err := s.vault.Get(h.Number)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

// History returns the account's history, most recent first.
func (s *Service) History(h Handle) ([]model.HistoryEntry, error) {
	acct, err := s.vault.Get(h.Number)
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryEntry, len(acct.History))
	for i, e := range acct.History {
		out[len(acct.History)-1-i] = e
	}
	return out, nil
}

// Deposit increases the balance by amount and records a deposit entry.
// Returns the new balance.
func (s *Service) Deposit(ctx context.Context, h Handle, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}

	release, err := s.acquire(ctx, h.Number)
	if err != nil {
		return decimal.Zero, err
	}
	defer release()

	var newBalance decimal.Decimal
	err = s.vault.Update(func(accounts map[string]*model.Account) error {
		acct, ok := accounts[h.Number]
		if !ok {
			return ErrAccountNotFound
		}
		acct.Balance = acct.Balance.Add(amount)
		acct.History = append(acct.History, model.HistoryEntry{
			Time:   time.Now().UTC(),
			Kind:   model.KindDeposit,
			Amount: amount,
			Note:   "Cash deposit",
		})
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info("deposit",
		zap.String("session", h.Session.String()),
		zap.String("account", h.Number),
		zap.String("amount", amount.StringFixed(2)))
	return newBalance, nil
}

// Withdraw decreases the balance by amount and records a withdraw entry.
// Withdrawing the exact balance is allowed and leaves zero.
func (s *Service) Withdraw(ctx context.Context, h Handle, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}

	release, err := s.acquire(ctx, h.Number)
	if err != nil {
		return decimal.Zero, err
	}
	defer release()

	var newBalance decimal.Decimal
	err = s.vault.Update(func(accounts map[string]*model.Account) error {
		acct, ok := accounts[h.Number]
		if !ok {
			return ErrAccountNotFound
		}
		if acct.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		acct.Balance = acct.Balance.Sub(amount)
		acct.History = append(acct.History, model.HistoryEntry{
			Time:   time.Now().UTC(),
			Kind:   model.KindWithdraw,
			Amount: amount,
			Note:   "Cash withdrawal",
		})
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info("withdraw",
		zap.String("session", h.Session.String()),
		zap.String("account", h.Number),
		zap.String("amount", amount.StringFixed(2)))
	return newBalance, nil
}

// Transfer moves amount from the authenticated account to toNumber. The debit,
// credit, and both history entries commit as one unit: a failure at any point
// leaves both accounts exactly as they were.
func (s *Service) Transfer(ctx context.Context, h Handle, toNumber string, amount decimal.Decimal) (TransferResult, error) {
	if toNumber == h.Number {
		return TransferResult{}, ErrSameAccount
	}
	if _, err := s.vault.Get(toNumber); err != nil {
		return TransferResult{}, err
	}
	if err := checkAmount(amount); err != nil {
		return TransferResult{}, err
	}

	// Both locks in ascending numeric order so concurrent transfers that
	// reference each other cannot deadlock.
	first, second := h.Number, toNumber
	if id.Less(second, first) {
		first, second = second, first
	}
	releaseFirst, err := s.acquire(ctx, first)
	if err != nil {
		return TransferResult{}, err
	}
	defer releaseFirst()
	releaseSecond, err := s.acquire(ctx, second)
	if err != nil {
		return TransferResult{}, err
	}
	defer releaseSecond()

	var result TransferResult
	err = s.vault.Update(func(accounts map[string]*model.Account) error {
		src, ok := accounts[h.Number]
		if !ok {
			return ErrAccountNotFound
		}
		dst, ok := accounts[toNumber]
		if !ok {
			return ErrAccountNotFound
		}
		if src.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		src.Balance = src.Balance.Sub(amount)
		dst.Balance = dst.Balance.Add(amount)

		now := time.Now().UTC()
		src.History = append(src.History, model.HistoryEntry{
			Time: now, Kind: model.KindTransferOut, Amount: amount, Note: "To " + toNumber,
		})
		dst.History = append(dst.History, model.HistoryEntry{
			Time: now, Kind: model.KindTransferIn, Amount: amount, Note: "From " + h.Number,
		})

		result = TransferResult{SourceBalance: src.Balance, DestBalance: dst.Balance}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	s.log.Info("transfer",
		zap.String("session", h.Session.String()),
		zap.String("from", h.Number),
		zap.String("to", toNumber),
		zap.String("amount", amount.StringFixed(2)))
	return result, nil
}

// acquire takes the per-account lock, waiting at most lockTimeout. The caller
// must invoke the returned release on every exit path.
func (s *Service) acquire(ctx context.Context, number string) (func(), error) {
	s.mu.Lock()
	sem, ok := s.locks[number]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[number] = sem
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		s.log.Warn("lock acquisition failed", zap.String("account", number), zap.Error(err))
		return nil, ErrBusy
	}
	return func() { sem.Release(1) }, nil
}

// checkAmount rejects non-positive amounts and anything finer than cents.
func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	hundred := decimal.NewFromInt(100)
	if !amount.Mul(hundred).Equal(amount.Mul(hundred).Floor()) {
		return ErrInvalidAmount
	}
	return nil
}
