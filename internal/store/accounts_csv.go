package store

import (
	"fmt"
	"io"
	"strconv"

	"github.com/schoolbank/passbook/internal/id"
	"github.com/schoolbank/passbook/internal/model"
)

const (
	accountFields     = 6
	accountColID      = 0
	accountColStudent = 1
	accountColBank    = 2
	accountColNumber  = 3
	accountColInitial = 4
	accountColIFSC    = 5
	accountsFile      = "accounts.csv"
)

var accountHeader = []string{"id", "student_id", "bank_id", "account_number", "initial_amount", "ifsc"}

var accountCodec = codec[model.Account]{
	file:      accountsFile,
	header:    accountHeader,
	marshal:   MarshalAccount,
	unmarshal: UnmarshalAccount,
	id:        func(a model.Account) int64 { return a.ID },
	withID:    func(a model.Account, v int64) model.Account { a.ID = v; return a },
	conflicts: func(a, b model.Account) bool {
		return a.BankID == b.BankID && a.AccountNumber == b.AccountNumber
	},
}

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	return readRecords(r, accountCodec)
}

// WriteAccounts writes accounts.csv including the header.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	return writeRecords(w, accountCodec, accounts)
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, accountFields)
	row[accountColID] = id.Format(a.ID)
	row[accountColStudent] = strconv.FormatInt(a.StudentID, 10)
	row[accountColBank] = strconv.FormatInt(a.BankID, 10)
	row[accountColNumber] = a.AccountNumber
	row[accountColInitial] = strconv.FormatInt(a.InitialAmount, 10)
	row[accountColIFSC] = a.IFSC
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != accountFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", accountFields, len(record))
	}

	ints := make([]int64, 4)
	for i, col := range []int{accountColID, accountColStudent, accountColBank, accountColInitial} {
		v, err := strconv.ParseInt(record[col], 10, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing %s %q: %w", accountHeader[col], record[col], err)
		}
		ints[i] = v
	}

	return model.Account{
		ID:            ints[0],
		StudentID:     ints[1],
		BankID:        ints[2],
		AccountNumber: record[accountColNumber],
		InitialAmount: ints[3],
		IFSC:          record[accountColIFSC],
	}, nil
}
