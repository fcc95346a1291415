package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbank/passbook/internal/model"
)

func issuesOfKind(issues []Issue, kind IssueKind) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

func cleanSnapshot() Snapshot {
	t1 := deposit(1, 1, 200, day(2025, 1, 1))
	t1.TotalAmount = 700
	t2 := withdrawal(2, 1, 100, day(2025, 1, 2))
	t2.TotalAmount = 600
	return Snapshot{
		Students:     []model.Student{{ID: 1, Name: "Asha"}},
		Banks:        []model.BankBranch{{ID: 1, Name: "SBI", IFSC: "SBIN0001"}},
		Accounts:     []model.Account{{ID: 1, StudentID: 1, BankID: 1, AccountNumber: "A1", InitialAmount: 500, IFSC: "SBIN0001"}},
		Transactions: []model.Transaction{t1, t2},
	}
}

func TestCheckIntegrity_Clean(t *testing.T) {
	assert.Empty(t, CheckIntegrity(cleanSnapshot()))
}

func TestCheckIntegrity_TotalDrift(t *testing.T) {
	s := cleanSnapshot()
	// Simulate editing the first transaction without restating later totals.
	s.Transactions[0].Amount = 300
	s.Transactions[0].TotalAmount = 800

	drift := issuesOfKind(CheckIntegrity(s), IssueTotalDrift)
	require.Len(t, drift, 1)
	assert.Equal(t, int64(2), drift[0].RecordID)
	assert.Contains(t, drift[0].Description, "stored total 600, derived 700")
}

func TestCheckIntegrity_Orphans(t *testing.T) {
	s := cleanSnapshot()
	s.Students = nil
	s.Transactions = append(s.Transactions, deposit(3, 77, 5, day(2025, 1, 3)))

	issues := CheckIntegrity(s)
	orphans := issuesOfKind(issues, IssueOrphanAccount)
	require.Len(t, orphans, 1)
	assert.Contains(t, orphans[0].Description, "missing student 1")

	txOrphans := issuesOfKind(issues, IssueOrphanTransaction)
	require.Len(t, txOrphans, 1)
	assert.Equal(t, int64(3), txOrphans[0].RecordID)
}

func TestCheckIntegrity_MissingBank(t *testing.T) {
	s := cleanSnapshot()
	s.Banks = nil

	issues := CheckIntegrity(s)
	orphans := issuesOfKind(issues, IssueOrphanAccount)
	require.Len(t, orphans, 1)
	assert.Contains(t, orphans[0].Description, "missing bank 1")
	assert.Empty(t, issuesOfKind(issues, IssueStaleIFSC))
}

func TestCheckIntegrity_StaleIFSC(t *testing.T) {
	s := cleanSnapshot()
	s.Banks[0].IFSC = "SBIN0099"

	stale := issuesOfKind(CheckIntegrity(s), IssueStaleIFSC)
	require.Len(t, stale, 1)
	assert.Equal(t, int64(1), stale[0].RecordID)
}

func TestCheckIntegrity_DuplicateAccountNumber(t *testing.T) {
	s := cleanSnapshot()
	s.Accounts = append(s.Accounts,
		model.Account{ID: 2, StudentID: 1, BankID: 1, AccountNumber: "A1", IFSC: "SBIN0001"},
		model.Account{ID: 3, StudentID: 1, BankID: 2, AccountNumber: "A1"},
	)
	s.Banks = append(s.Banks, model.BankBranch{ID: 2, Name: "BOM"})

	dups := issuesOfKind(CheckIntegrity(s), IssueDuplicateAccountNumber)
	require.Len(t, dups, 1, "same number in another branch is allowed")
	assert.Equal(t, int64(2), dups[0].RecordID)
}

func TestRestate(t *testing.T) {
	txns := []model.Transaction{
		withdrawal(2, 1, 100, day(2025, 1, 2)),
		deposit(1, 1, 300, day(2025, 1, 1)),
	}
	txns[0].TotalAmount = 999

	got := Restate(500, txns)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(800), got[0].TotalAmount)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(700), got[1].TotalAmount)

	assert.Equal(t, int64(999), txns[0].TotalAmount, "input untouched")

	s := cleanSnapshot()
	s.Transactions = got
	assert.Empty(t, issuesOfKind(CheckIntegrity(s), IssueTotalDrift))
}

func TestIssueString(t *testing.T) {
	i := Issue{Kind: IssueOrphanTransaction, RecordID: 4, Description: "x"}
	assert.Equal(t, "orphan-transaction [4]: x", i.String())
}
