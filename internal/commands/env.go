package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teller-dev/teller/internal/config"
	"github.com/teller-dev/teller/internal/ledger"
	"github.com/teller-dev/teller/internal/logging"
	"github.com/teller-dev/teller/internal/store"
)

// env wires the config, store, and ledger for one command invocation.
type env struct {
	cfg    *config.Config
	store  *store.Store
	ledger *ledger.Service
	log    *zap.Logger
}

func openEnv(dir string) (*env, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	st, err := store.Open(filepath.Join(dir, cfg.Vault.File), cfg, log)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		store:  st,
		ledger: ledger.NewService(st, cfg.Locking.Timeout(), log),
		log:    log,
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

// addDirFlag registers the shared --dir flag selecting the project directory.
func addDirFlag(cmd *cobra.Command, dir *string) {
	cmd.Flags().StringVar(dir, "dir", ".", "project directory")
}

// addAuthFlags registers the credential flags shared by account operations.
func addAuthFlags(cmd *cobra.Command, account, pin *string) {
	cmd.Flags().StringVar(account, "account", "", "account number (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(pin, "pin", "", "account PIN (required)")
	_ = cmd.MarkFlagRequired("pin")
}
