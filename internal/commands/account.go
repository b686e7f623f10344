package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBalanceCommand() *cobra.Command {
	var dir, account, pin string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
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

			bal, err := e.ledger.Balance(h)
			if err != nil {
				return err
			}
			fmt.Printf("Current balance: %s\n", bal.StringFixed(2))
			return nil
		},
	}

	addDirFlag(cmd, &dir)
	addAuthFlags(cmd, &account, &pin)
	return cmd
}

func newHistoryCommand() *cobra.Command {
	var dir, account, pin string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show transaction history, most recent first",
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
			for _, entry := range entries {
				fmt.Printf("%s | %-12s | %s | %s\n",
					entry.Time.Format("2006-01-02 15:04:05"),
					entry.Kind,
					entry.Amount.StringFixed(2),
					entry.Note)
			}
			return nil
		},
	}

	addDirFlag(cmd, &dir)
	addAuthFlags(cmd, &account, &pin)
	return cmd
}
