package ledger

import (
	"fmt"

	"github.com/schoolbank/passbook/internal/model"
)

// Snapshot is a full copy of every record collection.
type Snapshot struct {
	Students     []model.Student
	Banks        []model.BankBranch
	Accounts     []model.Account
	Transactions []model.Transaction
}

// IssueKind classifies an integrity finding.
type IssueKind string

const (
	IssueTotalDrift             IssueKind = "total-drift"
	IssueOrphanAccount          IssueKind = "orphan-account"
	IssueOrphanTransaction      IssueKind = "orphan-transaction"
	IssueStaleIFSC              IssueKind = "stale-ifsc"
	IssueDuplicateAccountNumber IssueKind = "duplicate-account-number"
)

// Issue is one integrity finding. RecordID is the account ID, except for
// total-drift and orphan-transaction where it is the transaction ID.
type Issue struct {
	Kind        IssueKind
	RecordID    int64
	Description string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%d]: %s", i.Kind, i.RecordID, i.Description)
}

// CheckIntegrity reports stored data that disagrees with what the ledger
// would derive. Stored totals are kept denormalized, so edits or deletes of
// historical transactions show up here as total-drift. Deletes do not
// cascade, which shows up as orphans.
func CheckIntegrity(s Snapshot) []Issue {
	var issues []Issue

	students := make(map[int64]bool, len(s.Students))
	for _, st := range s.Students {
		students[st.ID] = true
	}
	banks := make(map[int64]model.BankBranch, len(s.Banks))
	for _, b := range s.Banks {
		banks[b.ID] = b
	}
	accounts := make(map[int64]bool, len(s.Accounts))
	for _, a := range s.Accounts {
		accounts[a.ID] = true
	}

	type branchNumber struct {
		bankID int64
		number string
	}
	seen := make(map[branchNumber]int64)

	for _, a := range s.Accounts {
		if !students[a.StudentID] {
			issues = append(issues, Issue{
				Kind:        IssueOrphanAccount,
				RecordID:    a.ID,
				Description: fmt.Sprintf("account %s references missing student %d", a.AccountNumber, a.StudentID),
			})
		}
		b, ok := banks[a.BankID]
		if !ok {
			issues = append(issues, Issue{
				Kind:        IssueOrphanAccount,
				RecordID:    a.ID,
				Description: fmt.Sprintf("account %s references missing bank %d", a.AccountNumber, a.BankID),
			})
		} else if b.IFSC != a.IFSC {
			issues = append(issues, Issue{
				Kind:        IssueStaleIFSC,
				RecordID:    a.ID,
				Description: fmt.Sprintf("account %s has IFSC %q, branch now has %q", a.AccountNumber, a.IFSC, b.IFSC),
			})
		}

		key := branchNumber{a.BankID, a.AccountNumber}
		if first, dup := seen[key]; dup {
			issues = append(issues, Issue{
				Kind:        IssueDuplicateAccountNumber,
				RecordID:    a.ID,
				Description: fmt.Sprintf("account number %s already used by account %d in bank %d", a.AccountNumber, first, a.BankID),
			})
		} else {
			seen[key] = a.ID
		}

		for _, step := range RunningBalances(a.InitialAmount, ForAccount(a.ID, s.Transactions)) {
			if step.Transaction.TotalAmount != step.Balance {
				issues = append(issues, Issue{
					Kind:     IssueTotalDrift,
					RecordID: step.Transaction.ID,
					Description: fmt.Sprintf("account %s: stored total %d, derived %d",
						a.AccountNumber, step.Transaction.TotalAmount, step.Balance),
				})
			}
		}
	}

	for _, t := range s.Transactions {
		if !accounts[t.AccountID] {
			issues = append(issues, Issue{
				Kind:        IssueOrphanTransaction,
				RecordID:    t.ID,
				Description: fmt.Sprintf("transaction references missing account %d", t.AccountID),
			})
		}
	}

	return issues
}

// Restate returns txns in chronological order with TotalAmount recomputed
// from initial.
func Restate(initial int64, txns []model.Transaction) []model.Transaction {
	steps := RunningBalances(initial, txns)
	out := make([]model.Transaction, len(steps))
	for i, step := range steps {
		t := step.Transaction
		t.TotalAmount = step.Balance
		out[i] = t
	}
	return out
}
