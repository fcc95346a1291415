// Package store is the persistence collaborator for school banking records.
// Two backends implement Store: CSV files in a data directory and PostgreSQL.
package store

import (
	"context"
	"errors"

	"github.com/schoolbank/passbook/internal/model"
)

var (
	// ErrNotFound is returned when a record ID or account number does not resolve.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an account number is already used within the same bank branch.
	ErrConflict = errors.New("record conflicts with an existing record")
)

// Reader is the read side consumed by the ledger computations.
type Reader interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	ListBankBranches(ctx context.Context) ([]model.BankBranch, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (model.Account, error)
}

// Store adds record maintenance. Create methods ignore the incoming ID and
// return the record with its assigned ID. Deletes never cascade.
type Store interface {
	Reader

	CreateStudent(ctx context.Context, s model.Student) (model.Student, error)
	UpdateStudent(ctx context.Context, s model.Student) error
	DeleteStudent(ctx context.Context, id int64) error

	CreateBankBranch(ctx context.Context, b model.BankBranch) (model.BankBranch, error)
	UpdateBankBranch(ctx context.Context, b model.BankBranch) error
	DeleteBankBranch(ctx context.Context, id int64) error

	CreateAccount(ctx context.Context, a model.Account) (model.Account, error)
	UpdateAccount(ctx context.Context, a model.Account) error
	DeleteAccount(ctx context.Context, id int64) error

	CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	// UpdateTransactions replaces several transactions at once, all or nothing.
	UpdateTransactions(ctx context.Context, txns []model.Transaction) error

	Close() error
}
