package commands_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProject creates a project with one student, one branch and account
// 0042 opened with 500, and leaves an admin session.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	steps := [][]string{
		{"init", "--school", "ZP School Wai"},
		{"login", "admin"},
		{"student", "add", "--name", "Asha Patil", "--dob", "2012-06-14", "--class", "6A",
			"--school", "ZP School Wai", "--taluka", "Wai", "--district", "Satara", "--attendance", "12"},
		{"bank", "add", "--name", "SBI Wai", "--ifsc", "SBIN0000123", "--taluka", "Wai", "--district", "Satara"},
		{"account", "add", "--student", "1", "--bank", "1", "--number", "0042", "--initial", "500"},
	}
	for _, args := range steps {
		out, err := runPassbook(t, dir, args...)
		require.NoError(t, err, "%v: %s", args, out)
	}
	return dir
}

func TestGuestIsDenied(t *testing.T) {
	dir := setupProject(t)
	_, err := runPassbook(t, dir, "logout")
	require.NoError(t, err)

	out, err := runPassbook(t, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "guest")

	out, err = runPassbook(t, dir, "passbook", "0042")
	require.Error(t, err)
	assert.Contains(t, out, "not logged in")

	out, err = runPassbook(t, dir, "student", "list")
	require.Error(t, err)
	assert.Contains(t, out, "admin role required")
}

func TestRecordAndView(t *testing.T) {
	dir := setupProject(t)

	out, err := runPassbook(t, dir, "txn", "add", "0042", "--type", "deposit", "--amount", "1,200", "--reason", "Scholarship", "--date", "2024-07-01")
	require.NoError(t, err, out)
	assert.Contains(t, out, "balance ₹1,700")

	out, err = runPassbook(t, dir, "txn", "add", "0042", "--type", "withdrawal", "--amount", "5000", "--reason", "Trip", "--date", "2024-07-02")
	require.Error(t, err)
	assert.Contains(t, out, "insufficient balance")

	out, err = runPassbook(t, dir, "txn", "add", "0042", "--type", "withdrawal", "--amount", "200", "--reason", "Books", "--date", "2024-07-10")
	require.NoError(t, err, out)

	out, err = runPassbook(t, dir, "balance", "0042")
	require.NoError(t, err, out)
	assert.Equal(t, "₹1,500\n", out)

	out, err = runPassbook(t, dir, "passbook", "0042")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Asha Patil")
	assert.Contains(t, out, "SBIN0000123")
	assert.Contains(t, out, "01/07/2024")
	assert.Contains(t, out, "Balance: ₹1,500")

	out, err = runPassbook(t, dir, "history", "0042", "--from", "2024-07-05", "--to", "2024-07-31")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Books")
	assert.NotContains(t, out, "Scholarship")

	out, err = runPassbook(t, dir, "summary")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Net balance:        ₹1,500")

	out, err = runPassbook(t, dir, "txn", "list", "--recent", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Books")
	assert.NotContains(t, out, "Scholarship")

	out, err = runPassbook(t, dir, "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No issues found")
}

func TestHistoryCSV(t *testing.T) {
	dir := setupProject(t)
	_, err := runPassbook(t, dir, "txn", "add", "0042", "--amount", "100", "--reason", "Pocket money", "--date", "2024-07-01")
	require.NoError(t, err)

	path := filepath.Join(dir, "exports", "history_0042.csv")
	out, err := runPassbook(t, dir, "history", "0042", "--from", "2024-07-01", "--to", "2024-07-01", "--csv", path)
	require.NoError(t, err, out)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Account Number", rows[0][0])
	assert.Equal(t, []string{"0042", "Asha Patil", "01/07/2024", "deposit", "100", "Pocket money", "600"}, rows[1])
}

func TestUserSession(t *testing.T) {
	dir := setupProject(t)
	out, err := runPassbook(t, dir, "account", "add", "--student", "1", "--bank", "1", "--number", "0043")
	require.NoError(t, err, out)

	out, err = runPassbook(t, dir, "login", "user", "9999")
	require.Error(t, err)
	assert.Contains(t, out, "no such record")

	out, err = runPassbook(t, dir, "login", "user", "0042")
	require.NoError(t, err, out)

	out, err = runPassbook(t, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "user (account 0042)")

	out, err = runPassbook(t, dir, "balance", "0042")
	require.NoError(t, err, out)
	assert.Equal(t, "₹500\n", out)

	out, err = runPassbook(t, dir, "balance", "0043")
	require.Error(t, err)
	assert.Contains(t, out, "permission denied")

	out, err = runPassbook(t, dir, "summary")
	require.Error(t, err)
	assert.Contains(t, out, "permission denied")
}

func TestSearchAndUpdate(t *testing.T) {
	dir := setupProject(t)

	out, err := runPassbook(t, dir, "student", "list", "--search", "asha")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Asha Patil")

	out, err = runPassbook(t, dir, "student", "list", "--search", "ravi")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "Asha Patil")

	out, err = runPassbook(t, dir, "student", "update", "1", "--class", "7A")
	require.NoError(t, err, out)
	out, err = runPassbook(t, dir, "student", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "7A")

	out, err = runPassbook(t, dir, "student", "update", "9", "--class", "7A")
	require.Error(t, err)
	assert.Contains(t, out, "no such record")

	out, err = runPassbook(t, dir, "account", "list", "--search", "patil")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0042")

	out, err = runPassbook(t, dir, "student", "add", "--name", "Incomplete")
	require.Error(t, err)
	assert.Contains(t, out, "dob: is required")
}

func TestCheckFix(t *testing.T) {
	dir := setupProject(t)
	for _, args := range [][]string{
		{"txn", "add", "0042", "--amount", "100", "--reason", "A", "--date", "2024-07-01"},
		{"txn", "add", "0042", "--amount", "100", "--reason", "B", "--date", "2024-07-02"},
		{"txn", "update", "1", "--amount", "300"},
	} {
		out, err := runPassbook(t, dir, args...)
		require.NoError(t, err, "%v: %s", args, out)
	}

	out, err := runPassbook(t, dir, "check")
	require.Error(t, err)
	assert.Contains(t, out, "total-drift")

	out, err = runPassbook(t, dir, "check", "--fix")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Restated 2 transaction totals")

	out, err = runPassbook(t, dir, "balance", "0042")
	require.NoError(t, err)
	assert.Equal(t, "₹900\n", out)
}

func TestDeleteKeepsOrphans(t *testing.T) {
	dir := setupProject(t)
	_, err := runPassbook(t, dir, "txn", "add", "0042", "--amount", "100", "--reason", "A")
	require.NoError(t, err)

	out, err := runPassbook(t, dir, "account", "delete", "1")
	require.NoError(t, err, out)

	out, err = runPassbook(t, dir, "check")
	require.Error(t, err)
	assert.Contains(t, out, "orphan-transaction")
	assert.True(t, strings.Contains(out, "1 integrity issues found"), out)
}

func TestToken(t *testing.T) {
	dir := setupProject(t)

	out, err := runPassbook(t, dir, "token", "--role", "admin")
	require.Error(t, err)
	assert.Contains(t, out, "jwt secret is required")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PASSBOOK_JWT_SECRET=from-dotenv\n"), 0o600))
	out, err = runPassbook(t, dir, "token", "--role", "user", "--account", "0042")
	require.NoError(t, err, out)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)
}

func TestStudentImport(t *testing.T) {
	dir := setupProject(t)

	register := filepath.Join(dir, "exports", "students.csv")
	out, err := runPassbook(t, dir, "student", "list", "--csv", register)
	require.NoError(t, err, out)

	out, err = runPassbook(t, dir, "student", "import", register)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 1 students from students.csv")

	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	roster := "Roll No,Name,Date of Birth,Class\n13,Ravi Jadhav,02/11/2012,6A\n14,Meera Shinde,30/01/2013,6A\n"
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "6a.csv"), []byte(roster), 0o644))

	out, err = runPassbook(t, dir, "student", "import", "--format", "classlist", "--taluka", "Wai", "--district", "Satara")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 2 students from 6a.csv")
	assert.FileExists(t, filepath.Join(importDir, "processed", "6a.csv"))

	out, err = runPassbook(t, dir, "student", "list", "--search", "meera")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ZP School Wai")

	out, err = runPassbook(t, dir, "student", "import")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Nothing to import.")

	out, err = runPassbook(t, dir, "student", "import", "--format", "chase")
	require.Error(t, err)
	assert.Contains(t, out, "unknown import format")
}
