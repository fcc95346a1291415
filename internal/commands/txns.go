package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/model"
)

func newTxnCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transaction"},
		Short:   "Record and manage deposits and withdrawals (admin)",
	}
	cmd.AddCommand(
		newTxnAddCommand(opts),
		newTxnListCommand(opts),
		newTxnUpdateCommand(opts),
		newTxnDeleteCommand(opts),
	)
	return cmd
}

type txnFlags struct {
	kind   string
	date   string
	amount string
	reason string
}

func (f *txnFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "type", string(model.KindDeposit), "deposit or withdrawal")
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date, YYYY-MM-DD (default now)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount")
	cmd.Flags().StringVar(&f.reason, "reason", "", "reason shown on the passbook")
}

func (f *txnFlags) apply(cmd *cobra.Command, rt *runtime, t *model.Transaction) error {
	if changed(cmd, "type") || t.Kind == "" {
		t.Kind = model.Kind(f.kind)
	}
	if changed(cmd, "date") {
		d, err := parseDay("date", f.date, rt.loc)
		if err != nil {
			return err
		}
		t.Date = d
	}
	if changed(cmd, "amount") {
		amt, err := rt.money.Parse(f.amount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		t.Amount = amt
	}
	if changed(cmd, "reason") {
		t.Reason = f.reason
	}
	return nil
}

func newTxnAddCommand(opts *options) *cobra.Command {
	var f txnFlags
	cmd := &cobra.Command{
		Use:   "add <account-number>",
		Short: "Record a deposit or withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			var t model.Transaction
			if err := f.apply(cmd, rt, &t); err != nil {
				return err
			}
			created, err := rt.svc.RecordTransaction(cmd.Context(), banking.RecordParams{
				AccountNumber: args[0],
				Kind:          t.Kind,
				Date:          t.Date,
				Amount:        t.Amount,
				Reason:        t.Reason,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %s on %s (id %d), balance %s\n",
				created.Kind, rt.money.Format(created.Amount), args[0], created.ID, rt.money.Format(created.TotalAmount))
			return nil
		}),
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newTxnListCommand(opts *options) *cobra.Command {
	var search string
	var recent int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			ctx := cmd.Context()
			snap, err := rt.svc.Snapshot(ctx)
			if err != nil {
				return err
			}
			limit := recent
			if limit <= 0 {
				limit = len(snap.Transactions)
			}
			txns, err := rt.svc.RecentTransactions(ctx, limit)
			if err != nil {
				return err
			}

			numbers := make(map[int64]string, len(snap.Accounts))
			for _, a := range snap.Accounts {
				numbers[a.ID] = a.AccountNumber
			}
			q := strings.ToLower(strings.TrimSpace(search))

			tw := newTable(cmd.OutOrStdout(), "ID", "DATE", "ACCOUNT", "TYPE", "AMOUNT", "REASON", "STORED TOTAL")
			for _, t := range txns {
				number := numbers[t.AccountID]
				if q != "" && !strings.Contains(strings.ToLower(number), q) && !strings.Contains(strings.ToLower(t.Reason), q) {
					continue
				}
				row(tw, t.ID, rt.date(t.Date), number, t.Kind, rt.money.Format(t.Amount), t.Reason, rt.money.Format(t.TotalAmount))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by account number or reason")
	cmd.Flags().IntVar(&recent, "recent", 0, "show only the last N recorded transactions (0 shows all)")
	return cmd
}

func newTxnUpdateCommand(opts *options) *cobra.Command {
	var f txnFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Correct a transaction (run check --fix afterwards to restate totals)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			tid, err := recordID("transaction", args)
			if err != nil {
				return err
			}
			txns, err := rt.svc.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			var t *model.Transaction
			for i := range txns {
				if txns[i].ID == tid {
					t = &txns[i]
					break
				}
			}
			if t == nil {
				return fmt.Errorf("transaction %d: %w", tid, banking.ErrNotFound)
			}
			if err := f.apply(cmd, rt, t); err != nil {
				return err
			}
			if err := rt.svc.UpdateTransaction(cmd.Context(), *t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated transaction %d\n", tid)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newTxnDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			tid, err := recordID("transaction", args)
			if err != nil {
				return err
			}
			if err := rt.svc.DeleteTransaction(cmd.Context(), tid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", tid)
			return nil
		}),
	}
}
