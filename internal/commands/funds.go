package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/teller-dev/teller/internal/ledger"
)

func newDepositCommand() *cobra.Command {
	var dir, account, pin, amount string

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit funds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunds(dir, account, pin, amount, func(e *env, h ledger.Handle, amt decimal.Decimal) (string, error) {
				bal, err := e.ledger.Deposit(cmd.Context(), h, amt)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Deposited %s. New balance: %s", amt.StringFixed(2), bal.StringFixed(2)), nil
			})
		},
	}

	addDirFlag(cmd, &dir)
	addAuthFlags(cmd, &account, &pin)
	addAmountFlag(cmd, &amount)
	return cmd
}

func newWithdrawCommand() *cobra.Command {
	var dir, account, pin, amount string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw funds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunds(dir, account, pin, amount, func(e *env, h ledger.Handle, amt decimal.Decimal) (string, error) {
				bal, err := e.ledger.Withdraw(cmd.Context(), h, amt)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Withdrew %s. New balance: %s", amt.StringFixed(2), bal.StringFixed(2)), nil
			})
		},
	}

	addDirFlag(cmd, &dir)
	addAuthFlags(cmd, &account, &pin)
	addAmountFlag(cmd, &amount)
	return cmd
}

func newTransferCommand() *cobra.Command {
	var dir, account, pin, amount, to string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer funds to another account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunds(dir, account, pin, amount, func(e *env, h ledger.Handle, amt decimal.Decimal) (string, error) {
				res, err := e.ledger.Transfer(cmd.Context(), h, to, amt)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Transferred %s to account %s. New balance: %s",
					amt.StringFixed(2), to, res.SourceBalance.StringFixed(2)), nil
			})
		},
	}

	addDirFlag(cmd, &dir)
	addAuthFlags(cmd, &account, &pin)
	addAmountFlag(cmd, &amount)
	cmd.Flags().StringVar(&to, "to", "", "recipient account number (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func addAmountFlag(cmd *cobra.Command, amount *string) {
	cmd.Flags().StringVar(amount, "amount", "", "amount, e.g. 25.00 (required)")
	_ = cmd.MarkFlagRequired("amount")
}

func runFunds(dir, account, pin, amount string, op func(*env, ledger.Handle, decimal.Decimal) (string, error)) error {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return ledger.ErrInvalidAmount
	}

	e, err := openEnv(dir)
	if err != nil {
		return err
	}
	defer e.close()

	h, err := e.store.Authenticate(account, pin)
	if err != nil {
		return err
	}

	msg, err := op(e, h, amt)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
