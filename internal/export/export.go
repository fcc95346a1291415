// Package export writes passbook, history and register listings as CSV
// for printing or spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/schoolbank/passbook/internal/ledger"
	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/money"
)

// Options controls how amounts and dates are rendered.
type Options struct {
	Money    money.Formatter
	Location *time.Location
}

// HistoryHeader is the header row of a history or passbook export.
var HistoryHeader = []string{"Account Number", "Student Name", "Date", "Type", "Amount", "Reason", "Balance"}

const (
	historyFields = 7
	colAccount    = 0
	colStudent    = 1
	colDate       = 2
	colType       = 3
	colAmount     = 4
	colReason     = 5
	colBalance    = 6
)

func historyRow(pb ledger.Passbook, step ledger.Step, opts Options) []string {
	row := make([]string, historyFields)
	row[colAccount] = pb.Account.AccountNumber
	if pb.Student != nil {
		row[colStudent] = pb.Student.Name
	}
	row[colDate] = money.FormatDate(step.Transaction.Date, opts.Location)
	row[colType] = string(step.Transaction.Kind)
	row[colAmount] = opts.Money.Plain(step.Transaction.Amount)
	row[colReason] = step.Transaction.Reason
	row[colBalance] = opts.Money.Plain(step.Balance)
	return row
}

// History writes one row per entry. Balance is the derived running balance.
func History(w io.Writer, pb ledger.Passbook, entries []ledger.Step, opts Options) error {
	return write(w, HistoryHeader, len(entries), func(i int) []string {
		return historyRow(pb, entries[i], opts)
	})
}

// Passbook writes the full statement of the account.
func Passbook(w io.Writer, pb ledger.Passbook, opts Options) error {
	return History(w, pb, pb.Statement(), opts)
}

// StudentHeader is the header row of a student register export.
var StudentHeader = []string{"ID", "Name", "Date of Birth", "Class", "School", "Taluka", "District", "Attendance Number"}

// Students writes the student register.
func Students(w io.Writer, students []model.Student, opts Options) error {
	return write(w, StudentHeader, len(students), func(i int) []string {
		s := students[i]
		return []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			money.FormatDate(s.DOB, nil),
			s.Class,
			s.SchoolName,
			s.Taluka,
			s.District,
			strconv.FormatInt(s.AttendanceNumber, 10),
		}
	})
}

// AccountHeader is the header row of an account register export.
var AccountHeader = []string{"ID", "Account Number", "Student Name", "Bank", "IFSC", "Initial Amount"}

// Accounts writes the account register with student and branch names
// resolved. Unknown references export as empty cells.
func Accounts(w io.Writer, accounts []model.Account, students []model.Student, banks []model.BankBranch, opts Options) error {
	names := make(map[int64]string, len(students))
	for _, s := range students {
		names[s.ID] = s.Name
	}
	branches := make(map[int64]string, len(banks))
	for _, b := range banks {
		branches[b.ID] = b.Name
	}
	return write(w, AccountHeader, len(accounts), func(i int) []string {
		a := accounts[i]
		return []string{
			strconv.FormatInt(a.ID, 10),
			a.AccountNumber,
			names[a.StudentID],
			branches[a.BankID],
			a.IFSC,
			opts.Money.Plain(a.InitialAmount),
		}
	})
}

func write(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToFile creates path (and its directory) and runs fn against it.
func ToFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
