// Package database provides the SQL operations behind every fundctl command.
//
// FILE: queries.go
// PURPOSE: Base Queries struct and constructor. This is the entry point for all
// database operations.
//
// KEY TYPES:
// - Queries: Main struct holding the database pool
//
// RELATED FILES:
// - queries_account.go: Account listing, lookup, maintenance and totals
// - queries_transaction.go: Transaction inserts, deposits, transfers and history
// - scanners.go: Row scanning helper functions
package database

import (
	"context"
	"database/sql"
)

// execer is satisfied by both *Pool and *sql.Tx so inserts can run inside or
// outside a transaction
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queries provides database operations for the ledger
type Queries struct {
	pool *Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *Pool) *Queries {
	return &Queries{pool: pool}
}
