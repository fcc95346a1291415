package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/model"
)

func newBankCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage bank branches (admin)",
	}
	cmd.AddCommand(
		newBankAddCommand(opts),
		newBankListCommand(opts),
		newBankUpdateCommand(opts),
		newBankDeleteCommand(opts),
	)
	return cmd
}

type bankFlags struct {
	name     string
	ifsc     string
	taluka   string
	district string
}

func (f *bankFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "branch name")
	cmd.Flags().StringVar(&f.ifsc, "ifsc", "", "IFSC routing code")
	cmd.Flags().StringVar(&f.taluka, "taluka", "", "taluka")
	cmd.Flags().StringVar(&f.district, "district", "", "district")
}

func (f *bankFlags) apply(cmd *cobra.Command, b *model.BankBranch) {
	if changed(cmd, "name") {
		b.Name = f.name
	}
	if changed(cmd, "ifsc") {
		b.IFSC = f.ifsc
	}
	if changed(cmd, "taluka") {
		b.Taluka = f.taluka
	}
	if changed(cmd, "district") {
		b.District = f.district
	}
}

func newBankAddCommand(opts *options) *cobra.Command {
	var f bankFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a bank branch",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			var b model.BankBranch
			f.apply(cmd, &b)
			created, err := rt.svc.AddBankBranch(cmd.Context(), b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added bank branch %d: %s (%s)\n", created.ID, created.Name, created.IFSC)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newBankListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bank branches",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			banks, err := rt.svc.ListBankBranches(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "IFSC", "TALUKA", "DISTRICT")
			for _, b := range banks {
				row(tw, b.ID, b.Name, b.IFSC, b.Taluka, b.District)
			}
			return tw.Flush()
		}),
	}
}

func newBankUpdateCommand(opts *options) *cobra.Command {
	var f bankFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a bank branch (account IFSC snapshots are not rewritten)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			bid, err := recordID("bank", args)
			if err != nil {
				return err
			}
			banks, err := rt.svc.ListBankBranches(cmd.Context())
			if err != nil {
				return err
			}
			var b *model.BankBranch
			for i := range banks {
				if banks[i].ID == bid {
					b = &banks[i]
					break
				}
			}
			if b == nil {
				return fmt.Errorf("bank branch %d: %w", bid, banking.ErrNotFound)
			}
			f.apply(cmd, b)
			if err := rt.svc.UpdateBankBranch(cmd.Context(), *b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated bank branch %d\n", bid)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newBankDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bank branch (accounts are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			bid, err := recordID("bank", args)
			if err != nil {
				return err
			}
			if err := rt.svc.DeleteBankBranch(cmd.Context(), bid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted bank branch %d\n", bid)
			return nil
		}),
	}
}
