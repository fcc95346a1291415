package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/schoolbank/passbook/internal/id"
	"github.com/schoolbank/passbook/internal/model"
)

// CSV stores each record type in its own CSV file under one directory.
// Every write rewrites the whole file through a temp file and rename.
// sequences.yaml records the highest ID issued per file so deleted IDs
// are never reused, matching the Postgres sequences.
type CSV struct {
	dir string
	mu  sync.RWMutex
}

var _ Store = (*CSV)(nil)

// OpenCSV opens (and creates if needed) a CSV store rooted at dir. Missing
// record files are created with just a header row.
func OpenCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	s := &CSV{dir: dir}
	for _, err := range []error{
		ensureFile(s, studentCodec),
		ensureFile(s, bankCodec),
		ensureFile(s, accountCodec),
		ensureFile(s, txnCodec),
	} {
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the data directory.
func (s *CSV) Dir() string { return s.dir }

// Close is a no-op; files are closed after every operation.
func (s *CSV) Close() error { return nil }

func (s *CSV) ListStudents(ctx context.Context) ([]model.Student, error) {
	return list(ctx, s, studentCodec)
}

func (s *CSV) ListBankBranches(ctx context.Context) ([]model.BankBranch, error) {
	return list(ctx, s, bankCodec)
}

func (s *CSV) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return list(ctx, s, accountCodec)
}

func (s *CSV) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return list(ctx, s, txnCodec)
}

func (s *CSV) FindAccountByNumber(ctx context.Context, accountNumber string) (model.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return model.Account{}, err
	}
	for _, a := range accounts {
		if a.AccountNumber == accountNumber {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("account %q: %w", accountNumber, ErrNotFound)
}

func (s *CSV) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	return create(ctx, s, studentCodec, st)
}

func (s *CSV) UpdateStudent(ctx context.Context, st model.Student) error {
	return update(ctx, s, studentCodec, st)
}

func (s *CSV) DeleteStudent(ctx context.Context, recID int64) error {
	return remove(ctx, s, studentCodec, recID)
}

func (s *CSV) CreateBankBranch(ctx context.Context, b model.BankBranch) (model.BankBranch, error) {
	return create(ctx, s, bankCodec, b)
}

func (s *CSV) UpdateBankBranch(ctx context.Context, b model.BankBranch) error {
	return update(ctx, s, bankCodec, b)
}

func (s *CSV) DeleteBankBranch(ctx context.Context, recID int64) error {
	return remove(ctx, s, bankCodec, recID)
}

func (s *CSV) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	return create(ctx, s, accountCodec, a)
}

func (s *CSV) UpdateAccount(ctx context.Context, a model.Account) error {
	return update(ctx, s, accountCodec, a)
}

func (s *CSV) DeleteAccount(ctx context.Context, recID int64) error {
	return remove(ctx, s, accountCodec, recID)
}

func (s *CSV) CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	return create(ctx, s, txnCodec, t)
}

func (s *CSV) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	return update(ctx, s, txnCodec, t)
}

func (s *CSV) DeleteTransaction(ctx context.Context, recID int64) error {
	return remove(ctx, s, txnCodec, recID)
}

func (s *CSV) UpdateTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := load(s, txnCodec)
	if err != nil {
		return err
	}
	index := make(map[int64]int, len(all))
	for i, t := range all {
		index[t.ID] = i
	}
	for _, t := range txns {
		i, ok := index[t.ID]
		if !ok {
			return fmt.Errorf("transaction %d: %w", t.ID, ErrNotFound)
		}
		all[i] = t
	}
	return save(s, txnCodec, all)
}

func (s *CSV) path(name string) string {
	return filepath.Join(s.dir, name)
}

func ensureFile[T any](s *CSV, c codec[T]) error {
	path := s.path(c.file)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", c.file, err)
	}
	return save(s, c, nil)
}

func load[T any](s *CSV, c codec[T]) ([]T, error) {
	f, err := os.Open(s.path(c.file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.file, err)
	}
	defer f.Close()

	return readRecords(f, c)
}

func save[T any](s *CSV, c codec[T], recs []T) error {
	tmp, err := os.CreateTemp(s.dir, c.file+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", c.file, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, c, recs); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", c.file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", c.file, err)
	}
	if err := os.Rename(tmp.Name(), s.path(c.file)); err != nil {
		return fmt.Errorf("replacing %s: %w", c.file, err)
	}
	return nil
}

func list[T any](ctx context.Context, s *CSV, c codec[T]) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return load(s, c)
}

func create[T any](ctx context.Context, s *CSV, c codec[T], rec T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := load(s, c)
	if err != nil {
		return zero, err
	}
	seq, err := s.loadSequences()
	if err != nil {
		return zero, err
	}
	next := id.Next(seq[c.file], all, c.id)
	rec = c.withID(rec, next)
	if err := checkConflicts(c, all, rec); err != nil {
		return zero, err
	}
	if err := save(s, c, append(all, rec)); err != nil {
		return zero, err
	}
	// A failure here leaves the new row as the max, which Next still honours.
	seq[c.file] = next
	if err := s.saveSequences(seq); err != nil {
		return zero, err
	}
	return rec, nil
}

func update[T any](ctx context.Context, s *CSV, c codec[T], rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := load(s, c)
	if err != nil {
		return err
	}
	recID := c.id(rec)
	for i := range all {
		if c.id(all[i]) != recID {
			continue
		}
		if err := checkConflicts(c, all, rec); err != nil {
			return err
		}
		all[i] = rec
		return save(s, c, all)
	}
	return fmt.Errorf("%s id %d: %w", c.file, recID, ErrNotFound)
}

func remove[T any](ctx context.Context, s *CSV, c codec[T], recID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := load(s, c)
	if err != nil {
		return err
	}
	for i := range all {
		if c.id(all[i]) == recID {
			return save(s, c, append(all[:i], all[i+1:]...))
		}
	}
	return fmt.Errorf("%s id %d: %w", c.file, recID, ErrNotFound)
}

func checkConflicts[T any](c codec[T], all []T, rec T) error {
	if c.conflicts == nil {
		return nil
	}
	for _, other := range all {
		if c.id(other) != c.id(rec) && c.conflicts(other, rec) {
			return fmt.Errorf("%s id %d conflicts with id %d: %w", c.file, c.id(rec), c.id(other), ErrConflict)
		}
	}
	return nil
}
