package banking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schoolbank/passbook/internal/ledger"
	"github.com/schoolbank/passbook/internal/store"
)

var (
	// ErrNotFound matches any missing account, student, bank branch or
	// transaction. The underlying store or ledger error stays in the chain.
	ErrNotFound = errors.New("no such record")
	// ErrInsufficientBalance is returned when a withdrawal exceeds the
	// account's current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found with an input record.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) add(field, format string, args ...any) {
	*v = append(*v, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// err returns nil when nothing was collected so callers can return it directly.
func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
