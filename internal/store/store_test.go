package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teller-dev/teller/internal/config"
	"github.com/teller-dev/teller/internal/ledger"
	"github.com/teller-dev/teller/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.json")
	st, err := Open(path, config.Default(), zap.NewNop())
	require.NoError(t, err)
	return st, path
}

func TestCreateAccount_SequentialNumbers(t *testing.T) {
	st, _ := newTestStore(t)

	n1, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1001", n1)

	n2, err := st.CreateAccount("Grace Hopper", "5678")
	require.NoError(t, err)
	assert.Equal(t, "1002", n2)

	assert.Equal(t, "1003", st.NextNumber())
}

func TestCreateAccount_InitialState(t *testing.T) {
	st, _ := newTestStore(t)

	n, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	acct, err := st.Get(n)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", acct.Owner)
	assert.True(t, acct.Balance.IsZero())
	require.Len(t, acct.History, 1)
	assert.Equal(t, model.KindCreate, acct.History[0].Kind)
	assert.NotEqual(t, "1234", acct.PINHash, "PIN is never stored in the clear")
}

func TestCreateAccount_Validation(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.CreateAccount("", "1234")
	var verr ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = st.CreateAccount("   ", "1234")
	require.ErrorAs(t, err, &verr)

	for _, pin := range []string{"123", "12345", "12a4", ""} {
		_, err = st.CreateAccount("Ada", pin)
		require.ErrorAs(t, err, &verr, "pin %q", pin)
		assert.Equal(t, "pin", verr.Field)
	}
}

func TestAuthenticate(t *testing.T) {
	st, _ := newTestStore(t)

	n, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	h, err := st.Authenticate(n, "1234")
	require.NoError(t, err)
	assert.Equal(t, n, h.Number)

	// Two logins are distinct sessions.
	h2, err := st.Authenticate(n, "1234")
	require.NoError(t, err)
	assert.NotEqual(t, h.Session, h2.Session)

	_, err = st.Authenticate(n, "9999")
	assert.ErrorIs(t, err, ledger.ErrBadPIN)

	_, err = st.Authenticate("4242", "1234")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	st, _ := newTestStore(t)

	n, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	acct, err := st.Get(n)
	require.NoError(t, err)
	acct.Balance = dec("1000000.00")
	acct.History[0].Note = "tampered"

	fresh, err := st.Get(n)
	require.NoError(t, err)
	assert.True(t, fresh.Balance.IsZero())
	assert.Equal(t, "Account created", fresh.History[0].Note)
}

func TestPersistenceRoundTrip(t *testing.T) {
	st, path := newTestStore(t)

	n, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	err = st.Update(func(accounts map[string]*model.Account) error {
		acct := accounts[n]
		acct.Balance = dec("12.34")
		acct.History = append(acct.History, model.HistoryEntry{
			Time: time.Now().UTC(), Kind: model.KindDeposit, Amount: dec("12.34"), Note: "Cash deposit",
		})
		return nil
	})
	require.NoError(t, err)

	// A second store opened on the same file sees identical state, decimals
	// and history order included.
	st2, err := Open(path, config.Default(), zap.NewNop())
	require.NoError(t, err)

	acct, err := st2.Get(n)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("12.34")))
	require.Len(t, acct.History, 2)
	assert.Equal(t, model.KindCreate, acct.History[0].Kind)
	assert.Equal(t, model.KindDeposit, acct.History[1].Kind)
	assert.Equal(t, "1002", st2.NextNumber(), "number counter survives reload")

	_, err = st2.Authenticate(n, "1234")
	require.NoError(t, err, "PIN hash survives reload")
}

func TestReload_DiscardsNothingPersisted(t *testing.T) {
	st, path := newTestStore(t)

	n, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	// Simulate an external writer replacing the vault.
	external, err := Open(path, config.Default(), zap.NewNop())
	require.NoError(t, err)
	err = external.Update(func(accounts map[string]*model.Account) error {
		acct := accounts[n]
		acct.Balance = dec("77.00")
		acct.History = append(acct.History, model.HistoryEntry{
			Time: time.Now().UTC(), Kind: model.KindDeposit, Amount: dec("77.00"), Note: "Cash deposit",
		})
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, st.Reload())
	acct, err := st.Get(n)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("77.00")))
}

func TestOpen_RejectsCorruptVault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.json")

	st, err := Open(path, config.Default(), zap.NewNop())
	require.NoError(t, err)
	_, err = st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	// Tamper with the balance so it no longer matches the history replay.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"balance": "0"`, `"balance": "42"`, 1)
	require.NotEqual(t, string(data), tampered, "fixture must actually change")
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	_, err = Open(path, config.Default(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestOpen_RejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, config.Default(), zap.NewNop())
	require.Error(t, err)
}

func TestUpdate_PersistFailureLeavesMemoryUntouched(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "books")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	path := filepath.Join(sub, "vault.json")

	st, err := Open(path, config.Default(), zap.NewNop())
	require.NoError(t, err)
	n, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)

	// Make the snapshot write fail.
	require.NoError(t, os.RemoveAll(sub))

	err = st.Update(func(accounts map[string]*model.Account) error {
		acct := accounts[n]
		acct.Balance = dec("500.00")
		acct.History = append(acct.History, model.HistoryEntry{
			Time: time.Now().UTC(), Kind: model.KindDeposit, Amount: dec("500.00"), Note: "Cash deposit",
		})
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting vault")

	acct, err := st.Get(n)
	require.NoError(t, err)
	assert.True(t, acct.Balance.IsZero(), "failed persist must not mutate memory")
	assert.Len(t, acct.History, 1)
}

// TestScenario walks the end-to-end flow: create 1001, deposit 500, reject a
// 600 withdrawal, create 1002, transfer 200, and verify both sides.
func TestScenario(t *testing.T) {
	st, path := newTestStore(t)
	cfg := config.Default()
	svc := ledger.NewService(st, cfg.Locking.Timeout(), zap.NewNop())
	ctx := context.Background()

	n1, err := st.CreateAccount("Ada Lovelace", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1001", n1)

	h1, err := st.Authenticate(n1, "1234")
	require.NoError(t, err)

	bal, err := svc.Balance(h1)
	require.NoError(t, err)
	assert.Equal(t, "0.00", bal.StringFixed(2))

	bal, err = svc.Deposit(ctx, h1, dec("500.00"))
	require.NoError(t, err)
	assert.Equal(t, "500.00", bal.StringFixed(2))

	entries, err := svc.History(h1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = svc.Withdraw(ctx, h1, dec("600.00"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	bal, err = svc.Balance(h1)
	require.NoError(t, err)
	assert.Equal(t, "500.00", bal.StringFixed(2))

	n2, err := st.CreateAccount("Grace Hopper", "5678")
	require.NoError(t, err)
	assert.Equal(t, "1002", n2)

	res, err := svc.Transfer(ctx, h1, n2, dec("200.00"))
	require.NoError(t, err)
	assert.Equal(t, "300.00", res.SourceBalance.StringFixed(2))
	assert.Equal(t, "200.00", res.DestBalance.StringFixed(2))

	src, err := svc.History(h1)
	require.NoError(t, err)
	assert.Equal(t, "To 1002", src[0].Note)

	h2, err := st.Authenticate(n2, "5678")
	require.NoError(t, err)
	dst, err := svc.History(h2)
	require.NoError(t, err)
	assert.Equal(t, "From 1001", dst[0].Note)

	// Everything above survives a cold reopen and still validates.
	st2, err := Open(path, cfg, zap.NewNop())
	require.NoError(t, err)
	for _, n := range st2.Numbers() {
		acct, err := st2.Get(n)
		require.NoError(t, err)
		assert.Empty(t, ledger.ValidateAccount(acct))
	}
}
