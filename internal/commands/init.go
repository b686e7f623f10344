package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teller-dev/teller/internal/config"
	"github.com/teller-dev/teller/internal/logging"
	"github.com/teller-dev/teller/internal/model"
	"github.com/teller-dev/teller/internal/store"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new teller project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir)
		},
	}
	return cmd
}

func runInit(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Open once and persist so the vault file exists with an empty snapshot.
	st, err := store.Open(filepath.Join(dir, cfg.Vault.File), cfg, logging.Nop())
	if err != nil {
		return err
	}
	if err := st.Update(func(map[string]*model.Account) error { return nil }); err != nil {
		return err
	}

	fmt.Printf("Initialized teller project at %s\n", dir)
	return nil
}
