package model

import (
	"fmt"
	"time"
)

// Kind is the direction of a transaction.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// ParseKind validates a transaction kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDeposit, KindWithdrawal:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
}

// Transaction is one entry in an account's ledger.
type Transaction struct {
	ID          int64
	AccountID   int64
	Kind        Kind
	Date        time.Time
	Amount      int64 // > 0
	Reason      string
	TotalAmount int64 // stored balance right after this entry; caller-computed
}

// Signed returns the amount with withdrawals negated.
func (t Transaction) Signed() int64 {
	if t.Kind == KindWithdrawal {
		return -t.Amount
	}
	return t.Amount
}
