package ledger

import "github.com/schoolbank/passbook/internal/model"

// Summary is the organization-wide dashboard figure set.
type Summary struct {
	TotalInitial     int64
	TotalDeposits    int64
	TotalWithdrawals int64
	NetBalance       int64 // not clamped; negative means inconsistent data
	AccountCount     int
	TransactionCount int
}

// ComputeSummary totals initial amounts over all accounts and transaction
// amounts by kind over all transactions, whatever account they reference.
func ComputeSummary(accounts []model.Account, txns []model.Transaction) Summary {
	s := Summary{
		AccountCount:     len(accounts),
		TransactionCount: len(txns),
	}
	for _, a := range accounts {
		s.TotalInitial += a.InitialAmount
	}
	for _, t := range txns {
		switch t.Kind {
		case model.KindDeposit:
			s.TotalDeposits += t.Amount
		case model.KindWithdrawal:
			s.TotalWithdrawals += t.Amount
		}
	}
	s.NetBalance = s.TotalInitial + s.TotalDeposits - s.TotalWithdrawals
	return s
}
