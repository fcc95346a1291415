package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project configuration file at the project root.
	FileName = "passbook.yaml"

	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Config represents the top-level passbook.yaml configuration.
type Config struct {
	School   SchoolConfig   `yaml:"school"`
	Storage  StorageConfig  `yaml:"storage"`
	Currency CurrencyConfig `yaml:"currency"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// SchoolConfig identifies the program.
type SchoolConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"` // IANA name; calendar-day ranges use it
}

// StorageConfig selects the record backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`        // "csv" or "postgres"
	Dir    string `yaml:"dir,omitempty"` // csv only, relative to the project root
	DSN    string `yaml:"dsn,omitempty"` // postgres only
}

// CurrencyConfig controls how amounts are displayed.
type CurrencyConfig struct {
	Symbol     string `yaml:"symbol"`
	MinorUnits int32  `yaml:"minor_units"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret,omitempty"`
	JWTIssuer string `yaml:"jwt_issuer,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads a passbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(schoolName string) *Config {
	return &Config{
		School: SchoolConfig{
			Name:     schoolName,
			Timezone: "Asia/Kolkata",
		},
		Storage: StorageConfig{
			Driver: DriverCSV,
			Dir:    "data",
		},
		Currency: CurrencyConfig{
			Symbol:     "₹",
			MinorUnits: 0,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			JWTIssuer: "passbook",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadProject reads <root>/passbook.yaml, then loads <root>/.env if it
// exists and applies environment overrides.
func LoadProject(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(root); err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads <root>/.env into the process environment. Variables
// already set are left alone.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from PASSBOOK_* environment variables.
func ApplyEnv(cfg *Config) {
	cfg.Storage.DSN = getEnv("PASSBOOK_DSN", cfg.Storage.DSN)
	cfg.Server.JWTSecret = getEnv("PASSBOOK_JWT_SECRET", cfg.Server.JWTSecret)
	cfg.Server.Addr = getEnv("PASSBOOK_ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnv("PASSBOOK_LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverCSV:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	if c.Currency.MinorUnits < 0 {
		return fmt.Errorf("currency.minor_units must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the school's time zone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.School.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.School.Timezone)
	if err != nil {
		return nil, fmt.Errorf("school.timezone: %w", err)
	}
	return loc, nil
}

// DataDir returns the CSV data directory for a project rooted at root.
func (c *Config) DataDir(root string) string {
	dir := c.Storage.Dir
	if dir == "" {
		dir = "data"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
