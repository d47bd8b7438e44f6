package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a row in the accounts table
type Account struct {
	// Primary identifier
	ID int64 `db:"account_id" json:"account_id"`

	// Name of the account holder
	Holder string `db:"account_holder" json:"account_holder"`

	// Balance is fixed-point, DECIMAL(15,2) in the database
	Balance decimal.Decimal `db:"balance" json:"balance"`

	// Soft delete flag. Deleted rows stay in the table but are excluded
	// from listings, generation and balance changes.
	IsDeleted bool `db:"is_deleted" json:"is_deleted"`
}

// IsActive returns true unless the account has been soft deleted
func (a *Account) IsActive() bool {
	return !a.IsDeleted
}

// CanWithdraw checks if the account can cover a debit of the given amount
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	if !a.IsActive() {
		return false
	}
	return a.Balance.GreaterThanOrEqual(amount)
}
