// Package database provides the SQL operations behind every fundctl command.
//
// FILE: queries_transaction.go
// PURPOSE: Transaction-related queries including deposits, transfers,
// history and maintenance.
//
// KEY FUNCTIONS:
// - InsertDeposit: Bare deposit row, no balance change
// - ExecuteDeposit: Balance update plus deposit row in one transaction
// - ExecuteTransfer: Debit, credit and TRANSFER row in one transaction
// - ListAccountTransactions / ListAllTransactions: History
//
// RELATED FILES:
// - queries.go: Base Queries struct
// - queries_account.go: Account operations
// - scanners.go: Row scanning utilities
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/willfong/fund-playground/internal/models"
)

const insertDepositSQL = `INSERT INTO transactions (to_account_id, transaction_type, amount, description)
		VALUES (?, ?, ?, ?)`

func insertDeposit(ctx context.Context, ex execer, accountID int64, amount decimal.Decimal, description string) (int64, error) {
	result, err := ex.ExecContext(ctx, insertDepositSQL,
		accountID, string(models.TxTypeDeposit), amount, description,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return result.LastInsertId()
}

// InsertDeposit records a deposit row without touching the account balance.
// It is committed on its own and is not idempotent.
func (q *Queries) InsertDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (int64, error) {
	return insertDeposit(ctx, q.pool, accountID, amount, description)
}

// InsertTransaction records an arbitrary transaction row. Balances are not
// changed.
func (q *Queries) InsertTransaction(ctx context.Context, t *models.Transaction) (int64, error) {
	if !t.Amount.IsPositive() {
		return 0, ErrInvalidAmount
	}

	result, err := q.pool.ExecContext(ctx, `
		INSERT INTO transactions (
			from_account_id, to_account_id, transaction_type, amount, description, notes
		) VALUES (?, ?, ?, ?, ?, ?)`,
		t.FromAccountID, t.ToAccountID, string(t.Type), t.Amount, t.Description, t.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return result.LastInsertId()
}

// ExecuteDeposit credits an active account and records the deposit. Both
// statements commit together or not at all.
func (q *Queries) ExecuteDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (int64, error) {
	tx, err := q.pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE account_id = ? AND is_deleted = FALSE`,
		amount, accountID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update account: %w", err)
	}
	if err := requireAffected(result, accountID); err != nil {
		return 0, err
	}

	transactionID, err := insertDeposit(ctx, tx, accountID, amount, description)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deposit: %w", err)
	}

	return transactionID, nil
}

// TransferResult contains the results of a transfer operation
type TransferResult struct {
	TransactionID    int64
	NewSourceBalance decimal.Decimal
	NewDestBalance   decimal.Decimal
}

// ExecuteTransfer moves amount between two active accounts and records a
// single TRANSFER row. Input is checked before any statement runs.
func (q *Queries) ExecuteTransfer(ctx context.Context, fromAccountID, toAccountID int64, amount decimal.Decimal, description, notes string) (*TransferResult, error) {
	if fromAccountID == toAccountID {
		return nil, ErrSameAccount
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := q.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Both rows are locked in id order
	first, second := fromAccountID, toAccountID
	if first > second {
		first, second = second, first
	}
	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range []int64{first, second} {
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE account_id = ? AND is_deleted = FALSE FOR UPDATE`,
			id,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, ErrAccountInactive)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
		}
		balances[id] = balance
	}

	source := &models.Account{ID: fromAccountID, Balance: balances[fromAccountID]}
	if !source.CanWithdraw(amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds,
			balances[fromAccountID].StringFixed(2), amount.StringFixed(2))
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - ? WHERE account_id = ?`,
		amount, fromAccountID,
	); err != nil {
		return nil, fmt.Errorf("failed to debit account: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE account_id = ?`,
		amount, toAccountID,
	); err != nil {
		return nil, fmt.Errorf("failed to credit account: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (
			from_account_id, to_account_id, transaction_type, amount, description, notes
		) VALUES (?, ?, ?, ?, ?, ?)`,
		fromAccountID, toAccountID, string(models.TxTypeTransfer), amount,
		models.NullString(description), models.NullString(notes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	transactionID, _ := result.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	return &TransferResult{
		TransactionID:    transactionID,
		NewSourceBalance: balances[fromAccountID].Sub(amount),
		NewDestBalance:   balances[toAccountID].Add(amount),
	}, nil
}

// GetTransaction retrieves a single transaction
func (q *Queries) GetTransaction(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = ?`

	t, err := scanTransaction(q.pool.QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", transactionID, err)
	}
	return t, nil
}

// ListAccountTransactions returns transactions touching an account on
// either side, newest first
func (q *Queries) ListAccountTransactions(ctx context.Context, accountID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_account_id = ? OR to_account_id = ?
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT ?`

	return q.listTransactions(ctx, query, accountID, accountID, limit)
}

// ListAllTransactions returns every transaction ordered by id
func (q *Queries) ListAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY transaction_id`
	return q.listTransactions(ctx, query)
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := q.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// CountTransactions returns the number of rows in the transactions table
func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := q.pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// UpdateDescription replaces the description of a transaction
func (q *Queries) UpdateDescription(ctx context.Context, transactionID int64, description string) error {
	result, err := q.pool.ExecContext(ctx,
		`UPDATE transactions SET description = ? WHERE transaction_id = ?`,
		models.NullString(description), transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireTransaction(result, transactionID)
}

// DeleteTransaction removes a transaction row. Balances are not reverted.
func (q *Queries) DeleteTransaction(ctx context.Context, transactionID int64) error {
	result, err := q.pool.ExecContext(ctx,
		`DELETE FROM transactions WHERE transaction_id = ?`,
		transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireTransaction(result, transactionID)
}

func requireTransaction(result sql.Result, transactionID int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", transactionID, ErrNotFound)
	}
	return nil
}
