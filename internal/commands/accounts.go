package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/export"
	"github.com/schoolbank/passbook/internal/model"
)

func newAccountCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage student bank accounts (admin)",
	}
	cmd.AddCommand(
		newAccountAddCommand(opts),
		newAccountListCommand(opts),
		newAccountUpdateCommand(opts),
		newAccountDeleteCommand(opts),
	)
	return cmd
}

type accountFlags struct {
	student int64
	bank    int64
	number  string
	initial string
}

func (f *accountFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.student, "student", 0, "student ID")
	cmd.Flags().Int64Var(&f.bank, "bank", 0, "bank branch ID")
	cmd.Flags().StringVar(&f.number, "number", "", "account number as printed on the passbook")
	cmd.Flags().StringVar(&f.initial, "initial", "0", "opening balance")
}

func (f *accountFlags) apply(cmd *cobra.Command, rt *runtime, a *model.Account) error {
	if changed(cmd, "student") {
		a.StudentID = f.student
	}
	if changed(cmd, "bank") {
		a.BankID = f.bank
	}
	if changed(cmd, "number") {
		a.AccountNumber = f.number
	}
	if changed(cmd, "initial") {
		amt, err := rt.money.Parse(f.initial)
		if err != nil {
			return fmt.Errorf("--initial: %w", err)
		}
		a.InitialAmount = amt
	}
	return nil
}

func newAccountAddCommand(opts *options) *cobra.Command {
	var f accountFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open an account for a student",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			var a model.Account
			if err := f.apply(cmd, rt, &a); err != nil {
				return err
			}
			created, err := rt.svc.AddAccount(cmd.Context(), a)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s (id %d, IFSC %s, opening %s)\n",
				created.AccountNumber, created.ID, created.IFSC, rt.money.Format(created.InitialAmount))
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newAccountListCommand(opts *options) *cobra.Command {
	var search, csvPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			ctx := cmd.Context()
			accounts, err := rt.svc.SearchAccounts(ctx, search)
			if err != nil {
				return err
			}
			snap, err := rt.svc.Snapshot(ctx)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := export.ToFile(csvPath, func(w io.Writer) error {
					return export.Accounts(w, accounts, snap.Students, snap.Banks, rt.exportOptions())
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d accounts to %s\n", len(accounts), csvPath)
				return nil
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "NUMBER", "STUDENT", "BANK", "IFSC", "OPENING")
			for _, a := range accounts {
				row(tw, a.ID, a.AccountNumber, banking.StudentName(snap.Students, a), a.BankID, a.IFSC, rt.money.Format(a.InitialAmount))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by account number or student name")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the list to a CSV file instead")
	return cmd
}

func newAccountUpdateCommand(opts *options) *cobra.Command {
	var f accountFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an account (re-copies the branch IFSC)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			aid, err := recordID("account", args)
			if err != nil {
				return err
			}
			accounts, err := rt.svc.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			var a *model.Account
			for i := range accounts {
				if accounts[i].ID == aid {
					a = &accounts[i]
					break
				}
			}
			if a == nil {
				return fmt.Errorf("account %d: %w", aid, banking.ErrNotFound)
			}
			if err := f.apply(cmd, rt, a); err != nil {
				return err
			}
			if err := rt.svc.UpdateAccount(cmd.Context(), *a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated account %d\n", aid)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newAccountDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account (transactions are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			aid, err := recordID("account", args)
			if err != nil {
				return err
			}
			if err := rt.svc.DeleteAccount(cmd.Context(), aid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %d\n", aid)
			return nil
		}),
	}
}
