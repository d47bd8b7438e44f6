package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/config"
	"github.com/willfong/fund-playground/internal/database"
	"github.com/willfong/fund-playground/internal/logging"
	"github.com/willfong/fund-playground/internal/ui"
)

// session is everything a database-backed command needs
type session struct {
	ui      *ui.UI
	log     zerolog.Logger
	cfg     *config.Config
	pool    *database.Pool
	queries *database.Queries
}

// overrideFunc copies changed command flags onto the loaded config
type overrideFunc func(cmd *cobra.Command, cfg *config.Config)

// sessionFunc is the body of a database-backed command
type sessionFunc func(ctx context.Context, s *session, args []string) error

func newUI() *ui.UI {
	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}
	return u
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Options{
		Verbose: verbose || (cfg != nil && cfg.Verbose),
		NoColor: noColor,
	})
}

// loadConfig reads configuration, applies flag overrides and validates the
// result. The database password is checked separately by database.Open.
func loadConfig(cmd *cobra.Command, override overrideFunc) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		EnvFile:    envFile,
		ConfigFile: configFile,
	})
	if err != nil {
		return nil, err
	}

	if override != nil {
		override(cmd, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openDB validates the password, opens the pool and pings it behind a spinner
func openDB(ctx context.Context, u *ui.UI, log zerolog.Logger, cfg config.DatabaseConfig) (*database.Pool, error) {
	pool, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("dsn", database.DSN(cfg)).Msg("opening database")

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = config.DBConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spin := u.NewSpinner("Connecting to database")
	spin.Start()
	if err := pool.Connect(pingCtx); err != nil {
		spin.Error("connection failed")
		pool.Close()
		if database.IsConnectionError(err) {
			return nil, fmt.Errorf("%w (check the %s settings and that the server is running)", err, cfg.PasswordEnv)
		}
		return nil, err
	}
	spin.Success("connected!")

	return pool, nil
}

// withSession runs fn with an open pool and closes it on every path
func withSession(cmd *cobra.Command, u *ui.UI, override overrideFunc, fn func(ctx context.Context, s *session) error) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(cmd, override)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	pool, err := openDB(ctx, u, log, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	err = fn(ctx, &session{
		ui:      u,
		log:     log,
		cfg:     cfg,
		pool:    pool,
		queries: database.NewQueries(pool),
	})

	stats := pool.Stats()
	log.Debug().
		Int64("queries", stats.TotalQueries).
		Int64("failed", stats.FailedQueries).
		Dur("avg_latency", stats.AvgLatency).
		Msg("database session closed")

	return err
}

// dbRun adapts a sessionFunc to a cobra Run function. Errors are printed
// after the pool is closed and the process exits 1.
func dbRun(override overrideFunc, fn sessionFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		u := newUI()
		err := withSession(cmd, u, override, func(ctx context.Context, s *session) error {
			return fn(ctx, s, args)
		})
		exitOnError(u, err)
	}
}

// exitOnError prints err and exits 1
func exitOnError(u *ui.UI, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, u.Error(err.Error()))
	os.Exit(1)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
