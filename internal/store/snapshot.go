package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/teller-dev/teller/internal/model"
)

const snapshotVersion = 1

// snapshot is the on-disk layout of the vault file. Decimal amounts
// round-trip as strings, so no precision is lost.
type snapshot struct {
	Version    int                       `json:"version"`
	NextNumber int64                     `json:"next_number"`
	Accounts   map[string]*model.Account `json:"accounts"`
}

func readSnapshot(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding vault %s: %w", path, err)
	}
	if snap.Accounts == nil {
		snap.Accounts = make(map[string]*model.Account)
	}
	return &snap, nil
}

// writeSnapshot persists a snapshot atomically: write to a temp file, then
// rename over the real one. A crash mid-write never corrupts the vault.
func writeSnapshot(path string, snap *snapshot) error {
	snap.Version = snapshotVersion
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating vault temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding vault: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("flushing vault: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing vault: %w", err)
	}
	return nil
}
