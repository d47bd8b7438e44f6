// Package database provides the SQL operations behind every fundctl command.
//
// FILE: queries_account.go
// PURPOSE: Account-related queries: listing, lookup, maintenance and totals.
//
// KEY FUNCTIONS:
// - ListActiveAccounts: All accounts that are not soft deleted
// - ActiveAccountIDs: Ids only, for the deposit generator
// - GetAccountBalance: Balance lookup used by the verify suite
// - AccountHolderExists: Holder lookup used by the verify suite
// - CreateAccount, UpdateHolderName, SoftDeleteAccount, AdjustBalance
// - TotalActiveBalance: Sum of all active balances
//
// RELATED FILES:
// - queries.go: Base Queries struct
// - queries_transaction.go: Deposits, transfers and history
// - scanners.go: Row scanning utilities
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/willfong/fund-playground/internal/models"
)

// ListActiveAccounts returns every account that is not soft deleted, in the
// order the store hands them back
func (q *Queries) ListActiveAccounts(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_deleted = FALSE`

	rows, err := q.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ActiveAccountIDs returns the ids of every active account
func (q *Queries) ActiveAccountIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.pool.QueryContext(ctx,
		`SELECT account_id FROM accounts WHERE is_deleted = FALSE`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query account ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetActiveAccount retrieves a single active account
func (q *Queries) GetActiveAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ? AND is_deleted = FALSE`

	a, err := scanAccount(q.pool.QueryRowContext(ctx, query, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	return a, nil
}

// GetAccountBalance returns the stored balance of an account. Soft-deleted
// accounts are not filtered out.
func (q *Queries) GetAccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.pool.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE account_id = ?`,
		accountID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// AccountHolderExists reports whether an active account with exactly this
// holder name exists
func (q *Queries) AccountHolderExists(ctx context.Context, holder string) (bool, error) {
	var one int
	err := q.pool.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE account_holder = ? AND is_deleted = FALSE LIMIT 1`,
		holder,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up holder: %w", err)
	}
	return true, nil
}

// CreateAccount inserts a new active account and returns its id
func (q *Queries) CreateAccount(ctx context.Context, holder string, initialBalance decimal.Decimal) (int64, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return 0, errors.New("account holder is required")
	}
	if initialBalance.IsNegative() {
		return 0, fmt.Errorf("initial balance %s: %w", initialBalance.StringFixed(2), ErrInvalidAmount)
	}

	result, err := q.pool.ExecContext(ctx,
		`INSERT INTO accounts (account_holder, balance) VALUES (?, ?)`,
		holder, initialBalance,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return result.LastInsertId()
}

// UpdateHolderName renames an active account
func (q *Queries) UpdateHolderName(ctx context.Context, accountID int64, holder string) error {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return errors.New("account holder is required")
	}

	result, err := q.pool.ExecContext(ctx,
		`UPDATE accounts SET account_holder = ? WHERE account_id = ? AND is_deleted = FALSE`,
		holder, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename account: %w", err)
	}
	return requireAffected(result, accountID)
}

// SoftDeleteAccount flags an account as deleted. Deleting a missing or
// already deleted account is an error.
func (q *Queries) SoftDeleteAccount(ctx context.Context, accountID int64) error {
	result, err := q.pool.ExecContext(ctx,
		`UPDATE accounts SET is_deleted = TRUE WHERE account_id = ? AND is_deleted = FALSE`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireAffected(result, accountID)
}

// AdjustBalance adds delta (which may be negative) to an active account
func (q *Queries) AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	result, err := q.pool.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE account_id = ? AND is_deleted = FALSE`,
		delta, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	return requireAffected(result, accountID)
}

// TotalActiveBalance sums the balance of all active accounts. An empty
// table yields zero.
func (q *Queries) TotalActiveBalance(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := q.pool.QueryRowContext(ctx,
		`SELECT SUM(balance) FROM accounts WHERE is_deleted = FALSE`,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total balances: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// requireAffected turns a no-op update on an account into ErrAccountInactive
func requireAffected(result sql.Result, accountID int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", accountID, ErrAccountInactive)
	}
	return nil
}
