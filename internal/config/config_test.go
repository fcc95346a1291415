package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("ZP School Wai")
	cfg.Storage = StorageConfig{Driver: DriverPostgres, DSN: "postgres://localhost/passbook"}
	cfg.Server.JWTSecret = "s3cret"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("ZP School Wai")

	assert.Equal(t, "ZP School Wai", cfg.School.Name)
	assert.Equal(t, "Asia/Kolkata", cfg.School.Timezone)
	assert.Equal(t, DriverCSV, cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.Dir)
	assert.Equal(t, "₹", cfg.Currency.Symbol)
	assert.Equal(t, int32(0), cfg.Currency.MinorUnits)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Server.JWTSecret)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("ZP School Wai")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: ZP School Wai")
	assert.Contains(t, contents, "driver: csv")
	assert.Contains(t, contents, "minor_units: 0")
	assert.NotContains(t, contents, "jwt_secret")
	assert.NotContains(t, contents, "dsn")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PASSBOOK_DSN", "postgres://env/passbook")
	t.Setenv("PASSBOOK_JWT_SECRET", "from-env")
	t.Setenv("PASSBOOK_ADDR", "")
	t.Setenv("PASSBOOK_LOG_LEVEL", "debug")

	cfg := Default("x")
	ApplyEnv(cfg)

	assert.Equal(t, "postgres://env/passbook", cfg.Storage.DSN)
	assert.Equal(t, "from-env", cfg.Server.JWTSecret)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadProjectReadsDotEnv(t *testing.T) {
	root := t.TempDir()
	cfg := Default("x")
	require.NoError(t, Save(filepath.Join(root, FileName), cfg))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("PASSBOOK_JWT_SECRET=dotenv-secret\n"), 0o600))

	// godotenv sets process variables; make sure the test restores them.
	t.Setenv("PASSBOOK_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("PASSBOOK_JWT_SECRET"))

	got, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", got.Server.JWTSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, "unknown storage.driver"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage.dsn is required"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log.format"},
		{"bad timezone", func(c *Config) { c.School.Timezone = "Mars/Olympus" }, "school.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("x")
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLocationAndDataDir(t *testing.T) {
	cfg := Default("x")
	cfg.School.Timezone = "UTC"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), loc.String())

	assert.Equal(t, filepath.Join("/srv/school", "data"), cfg.DataDir("/srv/school"))
	cfg.Storage.Dir = "/var/passbook"
	assert.Equal(t, "/var/passbook", cfg.DataDir("/srv/school"))
}
