package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	var dir string
	var name string
	var pin string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			number, err := e.store.CreateAccount(name, pin)
			if err != nil {
				return err
			}

			fmt.Printf("Account created. Your account number is: %s\n", number)
			return nil
		},
	}

	addDirFlag(cmd, &dir)
	cmd.Flags().StringVar(&name, "name", "", "account owner name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&pin, "pin", "", "numeric PIN (required)")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}
