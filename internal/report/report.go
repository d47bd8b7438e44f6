// Package report lists active accounts and inserts a single test deposit.
//
// The deposit is a bare transaction row: account balances are not changed,
// and running the report twice inserts two rows.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/willfong/fund-playground/internal/models"
	"github.com/willfong/fund-playground/internal/ui"
	"github.com/willfong/fund-playground/internal/utils"
)

// Store is the subset of database.Queries the report needs
type Store interface {
	ListActiveAccounts(ctx context.Context) ([]*models.Account, error)
	InsertDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (int64, error)
}

// Deposit is the fixed test deposit the report inserts
type Deposit struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// Result holds what the report saw and wrote
type Result struct {
	Accounts      []*models.Account
	TransactionID int64
}

// Reporter runs the list-then-insert report
type Reporter struct {
	store Store
	ui    *ui.UI
	log   zerolog.Logger
}

// New creates a reporter that prints through u
func New(store Store, u *ui.UI, log zerolog.Logger) *Reporter {
	return &Reporter{store: store, ui: u, log: log}
}

// Run prints every active account, then inserts dep and prints its id.
// Nothing is inserted when listing fails.
func (r *Reporter) Run(ctx context.Context, dep Deposit) (*Result, error) {
	r.ui.Section("Fetching all active accounts")

	accounts, err := r.store.ListActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	r.ui.Println(RenderAccounts(r.ui, accounts))

	r.ui.Section("Inserting a new test transaction")

	id, err := r.store.InsertDeposit(ctx, dep.AccountID, dep.Amount, dep.Description)
	if err != nil {
		return &Result{Accounts: accounts}, fmt.Errorf("failed to insert test deposit: %w", err)
	}
	r.log.Debug().
		Int64("transaction_id", id).
		Int64("account_id", dep.AccountID).
		Str("amount", utils.FormatAmount(dep.Amount)).
		Msg("test deposit inserted")

	r.ui.Println(r.ui.Success(fmt.Sprintf("Successfully inserted transaction with ID: %d", id)))

	return &Result{Accounts: accounts, TransactionID: id}, nil
}

// RenderAccounts formats accounts as a table, or as one line per account in
// plain mode. Balances always carry two decimals.
func RenderAccounts(u *ui.UI, accounts []*models.Account) string {
	if len(accounts) == 0 {
		return "  No active accounts found."
	}

	if !u.Styled() {
		lines := make([]string, len(accounts))
		for i, a := range accounts {
			lines[i] = fmt.Sprintf("  Account ID: %d, Holder: %s, Balance: %s",
				a.ID, a.Holder, utils.FormatAmount(a.Balance))
		}
		return strings.Join(lines, "\n")
	}

	rows := make([][]string, len(accounts))
	for i, a := range accounts {
		rows[i] = []string{strconv.FormatInt(a.ID, 10), a.Holder, utils.FormatAmount(a.Balance)}
	}
	return u.Table([]string{"Account ID", "Holder", "Balance"}, rows, 2)
}
