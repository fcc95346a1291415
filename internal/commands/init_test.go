package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolbank/passbook/internal/config"
	"github.com/schoolbank/passbook/internal/store"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "passbook-test-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "passbook")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/passbook")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runPassbook(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, append([]string{"--root", root}, args...)...)
	cmd.Env = append(cleanEnv(), "PASSBOOK_LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// cleanEnv drops PASSBOOK_* variables so a project's .env is honored.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "PASSBOOK_") {
			env = append(env, kv)
		}
	}
	return env
}

func TestInit_CreatesProject(t *testing.T) {
	dir := t.TempDir()
	out, err := runPassbook(t, dir, "init", "--school", "ZP School Wai")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized passbook project")

	for _, name := range []string{"students.csv", "banks.csv", "accounts.csv", "transactions.csv"} {
		_, err := os.Stat(filepath.Join(dir, "data", name))
		require.NoError(t, err, "%s should exist", name)
	}

	f, err := os.Open(filepath.Join(dir, "data", "accounts.csv"))
	require.NoError(t, err)
	defer f.Close()
	accts, err := store.ReadAccounts(f)
	require.NoError(t, err)
	assert.Empty(t, accts)
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runPassbook(t, dir, "init", "--school", "ZP School Wai")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "ZP School Wai", cfg.School.Name)
	assert.Equal(t, config.DriverCSV, cfg.Storage.Driver)
	assert.Equal(t, "₹", cfg.Currency.Symbol)
}

func TestInit_PositionalDirectory(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "school")
	_, err := runPassbook(t, parent, "init", dir, "--school", "X")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, config.FileName))
	assert.NoError(t, err)
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runPassbook(t, dir, "init", "--school", "X")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{".passbook/", ".env"} {
		assert.Contains(t, string(data), pattern)
	}
}

func TestInit_RequiresSchool(t *testing.T) {
	dir := t.TempDir()
	_, err := runPassbook(t, dir, "init")
	require.Error(t, err, "init without --school should fail")
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := runPassbook(t, dir, "init", "--school", "X")
	require.NoError(t, err)

	out, err := runPassbook(t, dir, "init", "--school", "Y")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_PostgresNeedsDSN(t *testing.T) {
	dir := t.TempDir()
	out, err := runPassbook(t, dir, "init", "--school", "X", "--storage", "postgres")
	require.Error(t, err)
	assert.Contains(t, out, "storage.dsn is required")
}

func TestNotAProject(t *testing.T) {
	out, err := runPassbook(t, t.TempDir(), "summary")
	require.Error(t, err)
	assert.Contains(t, out, "not a passbook project")
}
