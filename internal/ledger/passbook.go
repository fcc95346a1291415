package ledger

import (
	"fmt"

	"github.com/schoolbank/passbook/internal/model"
)

// Passbook is the consolidated read model for one account. Student and Bank
// are nil when the referenced record no longer exists.
type Passbook struct {
	Account      model.Account
	Student      *model.Student
	Bank         *model.BankBranch
	Transactions []model.Transaction // input order
}

// FindAccount resolves an account by exact, case-sensitive account number.
func FindAccount(accountNumber string, accounts []model.Account) (model.Account, error) {
	for _, a := range accounts {
		if a.AccountNumber == accountNumber {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("account %q: %w", accountNumber, ErrNotFound)
}

// ForAccount returns the transactions that belong to accountID, keeping their
// input order.
func ForAccount(accountID int64, txns []model.Transaction) []model.Transaction {
	out := []model.Transaction{}
	for _, t := range txns {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

// AssemblePassbook joins the account with its student, bank branch and
// transactions. Only a missing account is an error.
func AssemblePassbook(
	accountNumber string,
	accounts []model.Account,
	students []model.Student,
	banks []model.BankBranch,
	txns []model.Transaction,
) (Passbook, error) {
	acct, err := FindAccount(accountNumber, accounts)
	if err != nil {
		return Passbook{}, err
	}

	pb := Passbook{
		Account:      acct,
		Transactions: ForAccount(acct.ID, txns),
	}
	for _, s := range students {
		if s.ID == acct.StudentID {
			pb.Student = &s
			break
		}
	}
	for _, b := range banks {
		if b.ID == acct.BankID {
			pb.Bank = &b
			break
		}
	}
	return pb, nil
}

// Statement returns the passbook's transactions in date order with the
// computed running balance for each.
func (p Passbook) Statement() []Step {
	return RunningBalances(p.Account.InitialAmount, p.Transactions)
}

// Balance returns the computed current balance of the account.
func (p Passbook) Balance() int64 {
	return ComputeBalance(p.Account.InitialAmount, p.Transactions)
}
