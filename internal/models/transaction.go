package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the type tag stored in transactions.transaction_type
type TransactionType string

const (
	TxTypeDeposit    TransactionType = "DEPOSIT"
	TxTypeWithdrawal TransactionType = "WITHDRAWAL"
	TxTypeTransfer   TransactionType = "TRANSFER"
)

// Normalized types used when comparing against external statements
const (
	ExtTypeTransferIn       = "TRANSFER_IN"
	ExtTypeTransferOut      = "TRANSFER_OUT"
	ExtTypeInternalTransfer = "INTERNAL_TRANSFER"
)

// Transaction represents a row in the transactions table
type Transaction struct {
	// Assigned by the store (AUTO_INCREMENT)
	ID int64 `db:"transaction_id" json:"transaction_id"`

	// Either side may be NULL: deposits have no source, withdrawals no target
	FromAccountID sql.NullInt64 `db:"from_account_id" json:"from_account_id"`
	ToAccountID   sql.NullInt64 `db:"to_account_id" json:"to_account_id"`

	Type TransactionType `db:"transaction_type" json:"transaction_type"`

	// Always positive, direction is given by Type and the account columns
	Amount decimal.Decimal `db:"amount" json:"amount"`

	Description sql.NullString `db:"description" json:"description"`
	Notes       sql.NullString `db:"notes" json:"notes"`

	// Assigned by the store (DEFAULT CURRENT_TIMESTAMP)
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NormalizedType maps the stored type onto the vocabulary external
// statements use. Transfers are split by which account columns are set.
func (t *Transaction) NormalizedType() string {
	return NormalizeType(string(t.Type), t.FromAccountID, t.ToAccountID)
}

// NormalizeType standardizes a transaction type for comparison
func NormalizeType(txType string, from, to sql.NullInt64) string {
	upper := strings.ToUpper(strings.TrimSpace(txType))
	if upper != string(TxTypeTransfer) {
		return upper
	}
	switch {
	case from.Valid && to.Valid:
		return ExtTypeInternalTransfer
	case from.Valid:
		return ExtTypeTransferOut
	case to.Valid:
		return ExtTypeTransferIn
	}
	return upper
}

// ExternalTransaction is one line of an external statement (bank export,
// processor report) used for reconciliation
type ExternalTransaction struct {
	ExternalID string          `json:"external_id"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	Reference  string          `json:"reference"`
}

// NewDeposit builds a deposit into accountID. Deposits never name a source.
func NewDeposit(accountID int64, amount decimal.Decimal, description string) *Transaction {
	return &Transaction{
		ToAccountID: sql.NullInt64{Int64: accountID, Valid: true},
		Type:        TxTypeDeposit,
		Amount:      amount,
		Description: NullString(description),
	}
}

// NullString maps "" to SQL NULL
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
