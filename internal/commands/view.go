package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/export"
	"github.com/schoolbank/passbook/internal/ledger"
)

// viewer runs fn after checking the session may read the account named by
// the first argument.
func (o *options) viewer(fn func(cmd *cobra.Command, number string, rt *runtime) error) func(*cobra.Command, []string) error {
	return o.run(func(cmd *cobra.Command, args []string, rt *runtime) error {
		if err := rt.session.CanView(args[0]); err != nil {
			return err
		}
		return fn(cmd, args[0], rt)
	})
}

func newPassbookCommand(opts *options) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "passbook <account-number>",
		Short: "Print an account's passbook",
		Args:  cobra.ExactArgs(1),
		RunE: opts.viewer(func(cmd *cobra.Command, number string, rt *runtime) error {
			pb, err := rt.svc.Passbook(cmd.Context(), number)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := export.ToFile(csvPath, func(w io.Writer) error {
					return export.Passbook(w, pb, rt.exportOptions())
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported passbook %s to %s\n", number, csvPath)
				return nil
			}

			out := cmd.OutOrStdout()
			printHeader(out, rt, pb)
			if err := printSteps(out, rt, pb.Statement()); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nBalance: %s\n", rt.money.Format(pb.Balance()))
			return nil
		}),
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the passbook to a CSV file instead")
	return cmd
}

func printHeader(w io.Writer, rt *runtime, pb ledger.Passbook) {
	fmt.Fprintf(w, "Account:  %s\n", pb.Account.AccountNumber)
	if pb.Student != nil {
		fmt.Fprintf(w, "Student:  %s (class %s, %s)\n", pb.Student.Name, pb.Student.Class, pb.Student.SchoolName)
	} else {
		fmt.Fprintf(w, "Student:  unknown (id %d)\n", pb.Account.StudentID)
	}
	if pb.Bank != nil {
		fmt.Fprintf(w, "Bank:     %s\n", pb.Bank.Name)
	} else {
		fmt.Fprintf(w, "Bank:     unknown (id %d)\n", pb.Account.BankID)
	}
	fmt.Fprintf(w, "IFSC:     %s\n", pb.Account.IFSC)
	fmt.Fprintf(w, "Opening:  %s\n\n", rt.money.Format(pb.Account.InitialAmount))
}

func printSteps(w io.Writer, rt *runtime, steps []ledger.Step) error {
	tw := newTable(w, "DATE", "TYPE", "AMOUNT", "REASON", "BALANCE")
	for _, st := range steps {
		row(tw, rt.date(st.Transaction.Date), st.Transaction.Kind, rt.money.Format(st.Transaction.Amount),
			st.Transaction.Reason, rt.money.Format(st.Balance))
	}
	return tw.Flush()
}

func newBalanceCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-number>",
		Short: "Print an account's current balance",
		Args:  cobra.ExactArgs(1),
		RunE: opts.viewer(func(cmd *cobra.Command, number string, rt *runtime) error {
			bal, err := rt.svc.Balance(cmd.Context(), number)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", rt.money.Format(bal))
			return nil
		}),
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	var from, to, csvPath string
	cmd := &cobra.Command{
		Use:   "history <account-number>",
		Short: "Print an account's transactions between two dates",
		Args:  cobra.ExactArgs(1),
		RunE: opts.viewer(func(cmd *cobra.Command, number string, rt *runtime) error {
			h, err := rt.svc.HistoryDays(cmd.Context(), number, from, to)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := export.ToFile(csvPath, func(w io.Writer) error {
					return export.History(w, h.Passbook, h.Entries, rt.exportOptions())
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(h.Entries), csvPath)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "History for %s from %s to %s\n\n", number, rt.date(h.From), rt.date(h.To))
			if len(h.Entries) == 0 {
				fmt.Fprintln(out, "No transactions in range.")
				return nil
			}
			return printSteps(out, rt, h.Entries)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the history to a CSV file instead")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show program-wide totals (admin)",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			sum, err := rt.svc.Summary(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "School:             %s\n", rt.cfg.School.Name)
			fmt.Fprintf(out, "Accounts:           %d\n", sum.AccountCount)
			fmt.Fprintf(out, "Transactions:       %d\n", sum.TransactionCount)
			fmt.Fprintf(out, "Opening balances:   %s\n", rt.money.Format(sum.TotalInitial))
			fmt.Fprintf(out, "Total deposits:     %s\n", rt.money.Format(sum.TotalDeposits))
			fmt.Fprintf(out, "Total withdrawals:  %s\n", rt.money.Format(sum.TotalWithdrawals))
			fmt.Fprintf(out, "Net balance:        %s\n", rt.money.Format(sum.NetBalance))
			return nil
		}),
	}
}
