package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teller-dev/teller/internal/statement"
)

func newExportCommand() *cobra.Command {
	var dir, account, pin, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transaction history as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			h, err := e.store.Authenticate(account, pin)
			if err != nil {
				return err
			}

			entries, err := e.ledger.History(h)
			if err != nil {
				return err
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating statement file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return statement.Write(w, entries)
		},
	}

	addDirFlag(cmd, &dir)
	addAuthFlags(cmd, &account, &pin)
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
