package banking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/ledger"
	"github.com/schoolbank/passbook/internal/model"
)

// Check lints the stored records.
func (s *Service) Check(ctx context.Context) ([]ledger.Issue, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.CheckIntegrity(snap), nil
}

// Fix restates the stored total of every transaction whose account exists
// so it equals the derived balance. It returns how many rows changed.
func (s *Service) Fix(ctx context.Context) (int, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	stored := make(map[int64]int64, len(snap.Transactions))
	for _, t := range snap.Transactions {
		stored[t.ID] = t.TotalAmount
	}

	var changed []model.Transaction
	for _, a := range snap.Accounts {
		for _, t := range ledger.Restate(a.InitialAmount, ledger.ForAccount(a.ID, snap.Transactions)) {
			if stored[t.ID] != t.TotalAmount {
				changed = append(changed, t)
			}
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if err := s.store.UpdateTransactions(ctx, changed); err != nil {
		return 0, fmt.Errorf("restating totals: %w", err)
	}
	s.log.Info("restated transaction totals", zap.Int("count", len(changed)))
	return len(changed), nil
}
