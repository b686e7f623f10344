package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Vault.File = "books.json"
	cfg.PIN.Length = 6

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "books.json", got.Vault.File)
	assert.Equal(t, 6, got.PIN.Length)
	assert.Equal(t, "3s", got.Locking.AcquireTimeout)
	assert.Equal(t, "info", got.Logging.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "vault.json", cfg.Vault.File)
	assert.Equal(t, 4, cfg.PIN.Length)
	assert.Equal(t, 3*time.Second, cfg.Locking.Timeout())
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestTimeoutFallback(t *testing.T) {
	assert.Equal(t, 3*time.Second, LockingConfig{}.Timeout())
	assert.Equal(t, 3*time.Second, LockingConfig{AcquireTimeout: "bogus"}.Timeout())
	assert.Equal(t, 3*time.Second, LockingConfig{AcquireTimeout: "-1s"}.Timeout())
	assert.Equal(t, 250*time.Millisecond, LockingConfig{AcquireTimeout: "250ms"}.Timeout())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, Default())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "file: vault.json")
	assert.Contains(t, contents, "length: 4")
	assert.Contains(t, contents, "acquire_timeout: 3s")
}
