package banking

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/ledger"
	"github.com/schoolbank/passbook/internal/model"
)

// DefaultRecent is how many transactions RecentTransactions returns when
// asked for zero or fewer.
const DefaultRecent = 20

// RecordParams holds parameters for recording a deposit or withdrawal.
type RecordParams struct {
	AccountNumber string
	Kind          model.Kind
	Date          time.Time // zero means now
	Amount        int64
	Reason        string
}

func validateTransaction(kind model.Kind, amount int64, reason string) ValidationErrors {
	var v ValidationErrors
	if _, err := model.ParseKind(string(kind)); err != nil {
		v.add("kind", "%v", err)
	}
	if amount <= 0 {
		v.add("amount", "must be positive")
	}
	required(&v, "reason", reason)
	return v
}

// RecordTransaction adds a transaction to an account at its date, which may
// lie before transactions already recorded. Balances are computed from the
// account's history, not read from stored totals. A withdrawal is rejected
// with ErrInsufficientBalance when it exceeds the balance as of its date, or
// when it would leave a later withdrawal uncovered. Stored totals of later
// transactions are restated to include the new entry.
func (s *Service) RecordTransaction(ctx context.Context, p RecordParams) (model.Transaction, error) {
	p.Reason = strings.TrimSpace(p.Reason)
	if err := validateTransaction(p.Kind, p.Amount, p.Reason).err(); err != nil {
		return model.Transaction{}, err
	}

	acct, err := s.store.FindAccountByNumber(ctx, p.AccountNumber)
	if err != nil {
		return model.Transaction{}, notFound(err)
	}
	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("loading transactions: %w", err)
	}

	date := p.Date
	if date.IsZero() {
		date = s.now()
	}
	t := model.Transaction{
		AccountID: acct.ID,
		Kind:      p.Kind,
		Date:      date,
		Amount:    p.Amount,
		Reason:    p.Reason,
	}

	total, later, err := placeTransaction(acct, ledger.ForAccount(acct.ID, all), t)
	if err != nil {
		return model.Transaction{}, err
	}
	t.TotalAmount = total

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("recording transaction: %w", err)
	}
	if len(later) > 0 {
		if err := s.store.UpdateTransactions(ctx, later); err != nil {
			return created, fmt.Errorf("recorded transaction %d but restating later totals (run check --fix): %w", created.ID, err)
		}
	}
	s.log.Info("transaction recorded",
		zap.Int64("transaction_id", created.ID),
		zap.String("account_number", acct.AccountNumber),
		zap.String("kind", string(created.Kind)),
		zap.Int64("amount", created.Amount),
		zap.Int64("balance", created.TotalAmount),
		zap.Int("restated", len(later)))
	return created, nil
}

// placeTransaction replays history with t inserted at its date. It returns
// the balance right after t and the later rows whose stored total differs
// from the replayed one. t sorts after rows sharing its date because it will
// get the highest ID.
func placeTransaction(acct model.Account, history []model.Transaction, t model.Transaction) (int64, []model.Transaction, error) {
	pending := t
	pending.ID = math.MaxInt64

	var (
		total  int64
		later  []model.Transaction
		placed bool
	)
	balance := acct.InitialAmount
	for _, step := range ledger.Chronological(append(slices.Clone(history), pending)) {
		overdraws := step.Kind == model.KindWithdrawal && step.Amount > balance
		switch {
		case step.ID == pending.ID:
			if overdraws {
				return 0, nil, fmt.Errorf("withdrawing %d from account %q with balance %d on %s: %w",
					t.Amount, acct.AccountNumber, balance, t.Date.Format(time.DateOnly), ErrInsufficientBalance)
			}
			balance = ledger.Apply(balance, step)
			total = balance
			placed = true
			continue
		case placed && overdraws && t.Kind == model.KindWithdrawal:
			return 0, nil, fmt.Errorf("withdrawing %d from account %q leaves transaction %d (%d on %s) uncovered: %w",
				t.Amount, acct.AccountNumber, step.ID, step.Amount, step.Date.Format(time.DateOnly), ErrInsufficientBalance)
		}
		balance = ledger.Apply(balance, step)
		if placed && step.TotalAmount != balance {
			step.TotalAmount = balance
			later = append(later, step)
		}
	}
	return total, later, nil
}

// UpdateTransaction corrects a stored transaction in place. Stored totals of
// later transactions are not touched; Check reports the drift and Fix
// restates it.
func (s *Service) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	t.Reason = strings.TrimSpace(t.Reason)
	v := validateTransaction(t.Kind, t.Amount, t.Reason)
	if t.Date.IsZero() {
		v.add("date", "is required")
	}
	if err := v.err(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return notFound(fmt.Errorf("updating transaction: %w", err))
	}
	s.log.Info("transaction updated", zap.Int64("transaction_id", t.ID))
	return nil
}

// DeleteTransaction removes one transaction. Later stored totals are left
// for Check and Fix.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return notFound(fmt.Errorf("deleting transaction: %w", err))
	}
	s.log.Info("transaction deleted", zap.Int64("transaction_id", id))
	return nil
}

// ListTransactions returns every stored transaction in ID order.
func (s *Service) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// RecentTransactions returns the last n recorded transactions, newest first.
func (s *Service) RecentTransactions(ctx context.Context, n int) ([]model.Transaction, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(all)
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
