// Package database provides the SQL operations behind every fundctl command.
//
// FILE: scanners.go
// PURPOSE: Row scanning helper functions for converting database rows to model structs.
//
// KEY FUNCTIONS:
// - scanAccount: Scans an account from sql.Row or sql.Rows
// - scanTransaction: Scans a transaction from sql.Row or sql.Rows
//
// RELATED FILES:
// - queries_account.go: Uses scanAccount
// - queries_transaction.go: Uses scanTransaction
package database

import (
	"github.com/willfong/fund-playground/internal/models"
)

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `account_id, account_holder, balance, is_deleted`

const transactionColumns = `transaction_id, from_account_id, to_account_id, transaction_type,
			amount, description, notes, created_at`

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Holder, &a.Balance, &a.IsDeleted)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var txType string

	err := row.Scan(
		&t.ID, &t.FromAccountID, &t.ToAccountID, &txType,
		&t.Amount, &t.Description, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Type = models.TransactionType(txType)
	return t, nil
}
