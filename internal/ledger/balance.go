package ledger

import (
	"cmp"
	"slices"

	"github.com/schoolbank/passbook/internal/model"
)

// Step is a transaction paired with the running balance after it.
type Step struct {
	Transaction model.Transaction
	Balance     int64
}

// Chronological returns a copy of txns ordered by date ascending, ties broken
// by ID and then by input position.
func Chronological(txns []model.Transaction) []model.Transaction {
	out := slices.Clone(txns)
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Apply adds one transaction to balance, clamping the result at zero.
func Apply(balance int64, t model.Transaction) int64 {
	balance += t.Signed()
	if balance < 0 {
		return 0
	}
	return balance
}

// ComputeBalance folds txns in chronological order starting from initial.
// The running total is clamped at zero after each step, matching the stored
// TotalAmount convention. No transactions means initial is returned as is.
func ComputeBalance(initial int64, txns []model.Transaction) int64 {
	balance := initial
	for _, t := range Chronological(txns) {
		balance = Apply(balance, t)
	}
	return balance
}

// RunningBalances is ComputeBalance with every intermediate step exposed.
func RunningBalances(initial int64, txns []model.Transaction) []Step {
	ordered := Chronological(txns)
	steps := make([]Step, len(ordered))
	balance := initial
	for i, t := range ordered {
		balance = Apply(balance, t)
		steps[i] = Step{Transaction: t, Balance: balance}
	}
	return steps
}
