package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/willfong/fund-playground/internal/config"
)

// NewMySQLConfig translates DatabaseConfig into a go-sql-driver config.
// parseTime is always on so TIMESTAMP columns scan into time.Time, and
// affected-row counts report matched rows so a same-value UPDATE still counts.
func NewMySQLConfig(cfg config.DatabaseConfig) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Addr()
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc
}

// DSN returns the connection string for cfg with the password masked,
// suitable for logs
func DSN(cfg config.DatabaseConfig) string {
	mc := NewMySQLConfig(cfg)
	if mc.Passwd != "" {
		mc.Passwd = "****"
	}
	return mc.FormatDSN()
}

// Pool wraps a sql.DB with query accounting and lifecycle management
type Pool struct {
	db     *sql.DB
	config config.DatabaseConfig

	// Metrics
	totalQueries   atomic.Int64
	failedQueries  atomic.Int64
	totalLatencyNs atomic.Int64
}

// Open creates a pool for cfg. The password must already be validated; no
// network I/O happens until Connect or the first query.
func Open(cfg config.DatabaseConfig) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(NewMySQLConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	return NewPoolFromDB(sql.OpenDB(connector), cfg), nil
}

// NewPoolFromDB wraps an existing handle and applies pool settings from cfg
func NewPoolFromDB(db *sql.DB, cfg config.DatabaseConfig) *Pool {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &Pool{
		db:     db,
		config: cfg,
	}
}

// Connect verifies the database connection is working
func (p *Pool) Connect(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", p.config.Addr(), err)
	}
	return nil
}

// Close releases the connection
func (p *Pool) Close() error {
	return p.db.Close()
}

// DB returns the underlying sql.DB for direct access when needed
func (p *Pool) DB() *sql.DB {
	return p.db
}

// QueryContext executes a query and returns rows
func (p *Pool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := p.db.QueryContext(ctx, query, args...)
	p.recordQuery(time.Since(start), err)
	return rows, err
}

// QueryRowContext executes a query expected to return at most one row
func (p *Pool) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := p.db.QueryRowContext(ctx, query, args...)
	p.recordQuery(time.Since(start), row.Err())
	return row
}

// ExecContext executes a query that doesn't return rows
func (p *Pool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := p.db.ExecContext(ctx, query, args...)
	p.recordQuery(time.Since(start), err)
	return result, err
}

// BeginTx starts a new transaction with the given options
func (p *Pool) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return p.db.BeginTx(ctx, opts)
}

// recordQuery updates internal metrics
func (p *Pool) recordQuery(duration time.Duration, err error) {
	p.totalQueries.Add(1)
	p.totalLatencyNs.Add(duration.Nanoseconds())
	if err != nil {
		p.failedQueries.Add(1)
	}
}

// Stats returns current pool statistics
func (p *Pool) Stats() PoolStats {
	dbStats := p.db.Stats()
	return PoolStats{
		OpenConnections: dbStats.OpenConnections,
		InUse:           dbStats.InUse,
		Idle:            dbStats.Idle,
		TotalQueries:    p.totalQueries.Load(),
		FailedQueries:   p.failedQueries.Load(),
		AvgLatency:      p.averageLatency(),
	}
}

func (p *Pool) averageLatency() time.Duration {
	total := p.totalQueries.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(p.totalLatencyNs.Load() / total)
}

// PoolStats contains connection pool and query statistics
type PoolStats struct {
	OpenConnections int
	InUse           int
	Idle            int

	TotalQueries  int64
	FailedQueries int64
	AvgLatency    time.Duration
}
