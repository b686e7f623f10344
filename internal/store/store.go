// Package store owns the durable collection of account records: number
// allocation, credential checks, and the load/persist lifecycle of the
// vault snapshot. It is the sole authority for persistence; every mutation
// is on disk before the call returns.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/teller-dev/teller/internal/config"
	"github.com/teller-dev/teller/internal/id"
	"github.com/teller-dev/teller/internal/ledger"
	"github.com/teller-dev/teller/internal/model"
)

// Store is a durable mapping from account number to Account, plus the
// next-available-number counter. It implements ledger.Vault.
type Store struct {
	path   string
	pinLen int
	log    *zap.Logger

	mu   sync.Mutex
	snap *snapshot
}

// Open loads the vault at path, or starts an empty one if the file does not
// exist yet. Every loaded account is checked against the ledger invariants;
// a snapshot that fails them is rejected as corrupt.
func Open(path string, cfg *config.Config, log *zap.Logger) (*Store, error) {
	s := &Store{path: path, pinLen: cfg.PIN.Length, log: log}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	snap, err := readSnapshot(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.snap = &snapshot{NextNumber: id.Base, Accounts: make(map[string]*model.Account)}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading vault: %w", err)
	}

	for number, acct := range snap.Accounts {
		if number != acct.Number {
			return fmt.Errorf("loading vault: account keyed %s holds number %s", number, acct.Number)
		}
		if verrs := ledger.ValidateAccount(*acct); len(verrs) > 0 {
			return fmt.Errorf("loading vault: account %s is corrupt: %s", number, verrs[0].Description)
		}
	}
	if snap.NextNumber < id.Base {
		snap.NextNumber = id.Base
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.log.Debug("vault loaded", zap.String("path", s.path), zap.Int("accounts", len(snap.Accounts)))
	return nil
}

// Reload re-reads the vault file, discarding any in-memory state that was
// never persisted. Tolerates external edits between sessions.
func (s *Store) Reload() error {
	return s.load()
}

// CreateAccount validates the owner name and PIN, allocates the next account
// number, and persists a zero-balance account with its create entry. Returns
// the assigned number.
func (s *Store) CreateAccount(owner, pin string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", ledger.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := s.checkPIN(pin); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing PIN: %w", err)
	}

	var number string
	err = s.update(func(snap *snapshot) error {
		number = id.Format(snap.NextNumber)
		snap.NextNumber++
		snap.Accounts[number] = &model.Account{
			Number:  number,
			Owner:   owner,
			PINHash: string(hash),
			Balance: decimal.Zero,
			History: []model.HistoryEntry{{
				Time:   time.Now().UTC(),
				Kind:   model.KindCreate,
				Amount: decimal.Zero,
				Note:   "Account created",
			}},
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("account created", zap.String("account", number), zap.String("owner", owner))
	return number, nil
}

// Get returns a deep copy of an account record.
func (s *Store) Get(number string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.snap.Accounts[number]
	if !ok {
		return model.Account{}, ledger.ErrAccountNotFound
	}
	return acct.Clone(), nil
}

// Authenticate checks the PIN against the stored hash and returns a handle on
// success. When the account is unknown, the comparison still runs against a
// throwaway hash so both failure paths cost about the same.
func (s *Store) Authenticate(number, pin string) (ledger.Handle, error) {
	s.mu.Lock()
	acct, ok := s.snap.Accounts[number]
	s.mu.Unlock()

	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(pin))
		return ledger.Handle{}, ledger.ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PINHash), []byte(pin)); err != nil {
		s.log.Warn("authentication failed", zap.String("account", number))
		return ledger.Handle{}, ledger.ErrBadPIN
	}

	h := ledger.NewHandle(number)
	s.log.Debug("authenticated", zap.String("account", number), zap.String("session", h.Session.String()))
	return h, nil
}

// Update runs fn against a deep copy of the account map, persists the result
// atomically, and only then makes it visible. Any error from fn or from the
// write leaves memory and disk exactly as they were.
func (s *Store) Update(fn func(accounts map[string]*model.Account) error) error {
	return s.update(func(snap *snapshot) error {
		return fn(snap.Accounts)
	})
}

func (s *Store) update(fn func(snap *snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	if err := fn(next); err != nil {
		return err
	}
	if err := writeSnapshot(s.path, next); err != nil {
		s.log.Error("vault persist failed", zap.Error(err))
		return fmt.Errorf("persisting vault: %w", err)
	}
	s.snap = next
	return nil
}

// NextNumber returns the number the next created account will receive.
func (s *Store) NextNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id.Format(s.snap.NextNumber)
}

// Numbers returns all existing account numbers, unordered.
func (s *Store) Numbers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.snap.Accounts))
	for n := range s.snap.Accounts {
		out = append(out, n)
	}
	return out
}

func (s *Store) cloneLocked() *snapshot {
	next := &snapshot{
		Version:    s.snap.Version,
		NextNumber: s.snap.NextNumber,
		Accounts:   make(map[string]*model.Account, len(s.snap.Accounts)),
	}
	for n, acct := range s.snap.Accounts {
		cp := acct.Clone()
		next.Accounts[n] = &cp
	}
	return next
}

func (s *Store) checkPIN(pin string) error {
	if len(pin) != s.pinLen {
		return ledger.ValidationError{Field: "pin", Reason: fmt.Sprintf("must be exactly %d digits", s.pinLen)}
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return ledger.ValidationError{Field: "pin", Reason: fmt.Sprintf("must be exactly %d digits", s.pinLen)}
		}
	}
	return nil
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

// dummyHash is compared against when the account does not exist, keeping the
// not-found path as slow as a real mismatch.
func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("0000"), bcrypt.DefaultCost)
	})
	return dummy
}
