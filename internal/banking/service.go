// Package banking is the record service behind the CLI and HTTP API. It
// validates and persists records and answers passbook, history and summary
// queries by running the ledger computations over a fresh snapshot.
package banking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/schoolbank/passbook/internal/ledger"
	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/store"
)

// Service provides business logic over a Store.
type Service struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	loc   *time.Location
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, used for defaulting transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone that calendar-day ranges are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService creates a banking Service.
func NewService(st store.Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: st, log: log, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone used for calendar-day ranges.
func (s *Service) Location() *time.Location { return s.loc }

// Snapshot loads all four record collections concurrently.
func (s *Service) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.store.ListStudents(gctx)
		snap.Students = v
		return err
	})
	g.Go(func() error {
		v, err := s.store.ListBankBranches(gctx)
		snap.Banks = v
		return err
	})
	g.Go(func() error {
		v, err := s.store.ListAccounts(gctx)
		snap.Accounts = v
		return err
	})
	g.Go(func() error {
		v, err := s.store.ListTransactions(gctx)
		snap.Transactions = v
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("loading records: %w", err)
	}
	return snap, nil
}

// Passbook assembles the passbook for an account number.
func (s *Service) Passbook(ctx context.Context, accountNumber string) (ledger.Passbook, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ledger.Passbook{}, err
	}
	pb, err := ledger.AssemblePassbook(accountNumber, snap.Accounts, snap.Students, snap.Banks, snap.Transactions)
	if err != nil {
		return ledger.Passbook{}, notFound(err)
	}
	return pb, nil
}

// Balance returns the computed current balance of an account.
func (s *Service) Balance(ctx context.Context, accountNumber string) (int64, error) {
	pb, err := s.Passbook(ctx, accountNumber)
	if err != nil {
		return 0, err
	}
	return pb.Balance(), nil
}

// History is a statement window: the passbook plus the transactions in range,
// each paired with the running balance computed over the whole account.
type History struct {
	Passbook ledger.Passbook
	From, To time.Time
	Entries  []ledger.Step
}

// History returns the account's transactions within [from, to].
func (s *Service) History(ctx context.Context, accountNumber string, from, to time.Time) (History, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return History{}, err
	}
	pb, err := ledger.AssemblePassbook(accountNumber, snap.Accounts, snap.Students, snap.Banks, snap.Transactions)
	if err != nil {
		return History{}, notFound(err)
	}
	txns, err := ledger.FilterHistory(accountNumber, snap.Accounts, snap.Transactions, from, to)
	if err != nil {
		return History{}, notFound(err)
	}

	balances := make(map[int64]int64, len(pb.Transactions))
	for _, step := range pb.Statement() {
		balances[step.Transaction.ID] = step.Balance
	}
	entries := make([]ledger.Step, 0, len(txns))
	for _, t := range txns {
		entries = append(entries, ledger.Step{Transaction: t, Balance: balances[t.ID]})
	}
	return History{Passbook: pb, From: from, To: to, Entries: entries}, nil
}

// HistoryDays is History over calendar days given as YYYY-MM-DD.
func (s *Service) HistoryDays(ctx context.Context, accountNumber, fromDay, toDay string) (History, error) {
	from, to, err := ledger.ParseDayRange(fromDay, toDay, s.loc)
	if err != nil {
		return History{}, ValidationErrors{{Field: "date", Message: err.Error()}}
	}
	return s.History(ctx, accountNumber, from, to)
}

// Summary computes program-wide totals.
func (s *Service) Summary(ctx context.Context) (ledger.Summary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.ComputeSummary(snap.Accounts, snap.Transactions), nil
}

func findStudent(students []model.Student, id int64) (model.Student, bool) {
	for _, st := range students {
		if st.ID == id {
			return st, true
		}
	}
	return model.Student{}, false
}

func findBank(banks []model.BankBranch, id int64) (model.BankBranch, bool) {
	for _, b := range banks {
		if b.ID == id {
			return b, true
		}
	}
	return model.BankBranch{}, false
}
