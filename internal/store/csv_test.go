package store

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbank/passbook/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStudentsRoundTrip(t *testing.T) {
	students := []model.Student{
		{ID: 1, Name: "Asha Patil", DOB: date(2012, 6, 14), Class: "6A", SchoolName: "ZP School Wai", Taluka: "Wai", District: "Satara", AttendanceNumber: 12},
		{ID: 2, Name: "Ravi, Jr.", Class: "7B"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStudents(&buf, students))
	assert.True(t, strings.HasPrefix(buf.String(), "id,name,dob,"))

	got, err := ReadStudents(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, students[0].Name, got[0].Name)
	assert.True(t, students[0].DOB.Equal(got[0].DOB))
	assert.Equal(t, students[0].AttendanceNumber, got[0].AttendanceNumber)
	assert.Equal(t, "Ravi, Jr.", got[1].Name)
	assert.True(t, got[1].DOB.IsZero())
}

func TestBanksRoundTrip(t *testing.T) {
	banks := []model.BankBranch{{ID: 3, Name: "SBI Wai", IFSC: "SBIN0000123", Taluka: "Wai", District: "Satara"}}

	var buf bytes.Buffer
	require.NoError(t, WriteBankBranches(&buf, banks))
	got, err := ReadBankBranches(&buf)
	require.NoError(t, err)
	assert.Equal(t, banks, got)
}

func TestAccountsRoundTrip(t *testing.T) {
	accounts := []model.Account{{ID: 1, StudentID: 2, BankID: 3, AccountNumber: "0042", InitialAmount: 500, IFSC: "SBIN0000123"}}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))
	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	// Leading zeros survive.
	assert.Equal(t, accounts, got)
}

func TestTransactionsRoundTrip(t *testing.T) {
	when := time.Date(2024, 7, 1, 9, 30, 15, 123456789, time.UTC)
	txns := []model.Transaction{
		{ID: 1, AccountID: 1, Kind: model.KindDeposit, Date: when, Amount: 200, Reason: "Pocket money", TotalAmount: 700},
		{ID: 2, AccountID: 1, Kind: model.KindWithdrawal, Date: when.Add(time.Hour), Amount: 50, Reason: "", TotalAmount: 650},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range txns {
		assert.True(t, txns[i].Date.Equal(got[i].Date))
		got[i].Date = txns[i].Date
	}
	assert.Equal(t, txns, got)
}

func TestReadEmpty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadTransactions(strings.NewReader("id,account_id,kind,date,amount,reason,total_amount\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalTransactionErrors(t *testing.T) {
	base := []string{"1", "1", "deposit", "2024-07-01T00:00:00Z", "100", "", "100"}

	tests := []struct {
		name  string
		col   int
		value string
	}{
		{"bad id", txnColID, "x"},
		{"bad account", txnColAccount, ""},
		{"bad kind", txnColKind, "Deposit"},
		{"bad date", txnColDate, "01/07/2024"},
		{"bad amount", txnColAmount, "1.5"},
		{"bad total", txnColTotal, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := append([]string(nil), base...)
			rec[tt.col] = tt.value
			_, err := UnmarshalTransaction(rec)
			assert.Error(t, err)
		})
	}

	_, err := UnmarshalTransaction(base[:3])
	assert.ErrorContains(t, err, "expected 7 fields")
}

func TestReadReportsRow(t *testing.T) {
	in := "id,name,ifsc,taluka,district\n1,SBI,IFSC,Wai,Satara\nx,Bad,,,\n"
	_, err := ReadBankBranches(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "banks.csv row 3")
}
