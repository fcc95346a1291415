package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/config"
	"github.com/schoolbank/passbook/internal/export"
	"github.com/schoolbank/passbook/internal/logging"
	"github.com/schoolbank/passbook/internal/money"
	"github.com/schoolbank/passbook/internal/session"
	"github.com/schoolbank/passbook/internal/store"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	root string
}

func (o *options) rootDir() (string, error) {
	abs, err := filepath.Abs(o.root)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// runtime is everything a command needs once the project is opened.
type runtime struct {
	root    string
	cfg     *config.Config
	log     *zap.Logger
	store   store.Store
	svc     *banking.Service
	session session.Session
	money   money.Formatter
	loc     *time.Location
}

func (o *options) open(ctx context.Context) (*runtime, error) {
	root, err := o.rootDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadProject(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a passbook project (run passbook init): %w", root, err)
	}
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg, root)
	if err != nil {
		return nil, err
	}
	sess, err := session.Load(root)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &runtime{
		root:    root,
		cfg:     cfg,
		log:     log,
		store:   st,
		svc:     banking.NewService(st, log, banking.WithLocation(loc)),
		session: sess,
		money:   money.Formatter{Symbol: cfg.Currency.Symbol, MinorUnits: cfg.Currency.MinorUnits},
		loc:     loc,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, root string) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg, err := store.OpenPostgres(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return store.OpenCSV(cfg.DataDir(root))
	}
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.log.Warn("closing store", zap.Error(err))
	}
	_ = rt.log.Sync()
}

func (rt *runtime) exportOptions() export.Options {
	return export.Options{Money: rt.money, Location: rt.loc}
}

func (rt *runtime) date(t time.Time) string {
	return money.FormatDate(t, rt.loc)
}

// run opens the project around fn.
func (o *options) run(fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := o.open(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd, args, rt)
	}
}

// admin is run for commands restricted to the admin role.
func (o *options) admin(fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return o.run(func(cmd *cobra.Command, args []string, rt *runtime) error {
		if err := rt.session.RequireAdmin(); err != nil {
			return err
		}
		return fn(cmd, args, rt)
	})
}
