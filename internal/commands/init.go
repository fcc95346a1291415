package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/config"
)

func newInitCommand(opts *options) *cobra.Command {
	var school string
	var driver string
	var dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new passbook project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.root
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, school, driver, dsn)
		},
	}

	cmd.Flags().StringVar(&school, "school", "", "school or program name (required)")
	_ = cmd.MarkFlagRequired("school")
	cmd.Flags().StringVar(&driver, "storage", config.DriverCSV, "record storage: csv or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres connection string (postgres storage only)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, school, driver, dsn string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfg := config.Default(school)
	cfg.Storage.Driver = driver
	if driver == config.DriverPostgres {
		cfg.Storage.Dir = ""
		cfg.Storage.DSN = dsn
	}

	// Environment overrides are used to reach the database but never saved.
	if err := config.LoadDotEnv(dir); err != nil {
		return err
	}
	effective := *cfg
	config.ApplyEnv(&effective)
	if err := effective.Validate(); err != nil {
		return err
	}

	// Create the record files or tables up front so a fresh project is readable.
	st, err := openStore(cmd.Context(), &effective, dir)
	if err != nil {
		return fmt.Errorf("preparing storage: %w", err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Sessions and secrets stay out of version control.
	gitignore := ".passbook/\n.env\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized passbook project at %s (%s storage)\n", dir, driver)
	return nil
}

