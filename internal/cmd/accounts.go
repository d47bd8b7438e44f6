package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/report"
	"github.com/willfong/fund-playground/internal/utils"
)

var (
	accountInitialBalance string
	accountHistoryLimit   int
)

// accountsCmd groups account maintenance
var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"account"},
	Short:   "Inspect and maintain accounts",
	Long: `Inspect and maintain rows in the accounts table.

Deleted accounts are soft deleted: the row stays but is hidden from every
listing and can no longer receive deposits or transfers.

Example:
  fundctl accounts list
  fundctl accounts create "Carol Danvers" --balance 100.00
  fundctl accounts adjust 3 -25.50`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active accounts",
	Args:  cobra.NoArgs,
	Run:   dbRun(nil, runAccountsList),
}

var accountsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an account and its recent transactions",
	Args:  cobra.ExactArgs(1),
	Run:   dbRun(nil, runAccountsShow),
}

var accountsCreateCmd = &cobra.Command{
	Use:   "create HOLDER",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	Run:   dbRun(nil, runAccountsCreate),
}

var accountsRenameCmd = &cobra.Command{
	Use:   "rename ID HOLDER",
	Short: "Change an account's holder name",
	Args:  cobra.ExactArgs(2),
	Run:   dbRun(nil, runAccountsRename),
}

var accountsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Soft delete an account",
	Args:  cobra.ExactArgs(1),
	Run:   dbRun(nil, runAccountsDelete),
}

var accountsAdjustCmd = &cobra.Command{
	Use:   "adjust ID DELTA",
	Short: "Add DELTA (may be negative) to an account's balance",
	Long: `Add DELTA to the balance of an active account. No transaction row is
written; use this to repair fixture data.`,
	Args: cobra.ExactArgs(2),
	Run:  dbRun(nil, runAccountsAdjust),
}

var accountsTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Print the sum of all active balances",
	Args:  cobra.NoArgs,
	Run:   dbRun(nil, runAccountsTotal),
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsListCmd, accountsShowCmd, accountsCreateCmd,
		accountsRenameCmd, accountsDeleteCmd, accountsAdjustCmd, accountsTotalCmd)

	accountsCreateCmd.Flags().StringVar(&accountInitialBalance, "balance", "0.00", "opening balance")
	// Stop flag parsing at ID so a negative DELTA is not read as a flag
	accountsAdjustCmd.Flags().SetInterspersed(false)
	accountsShowCmd.Flags().IntVar(&accountHistoryLimit, "limit", 10, "number of recent transactions to show (0 = none)")
}

func runAccountsList(ctx context.Context, s *session, args []string) error {
	accounts, err := s.queries.ListActiveAccounts(ctx)
	if err != nil {
		return err
	}
	s.ui.Section("Active accounts")
	s.ui.Println(report.RenderAccounts(s.ui, accounts))
	return nil
}

func runAccountsShow(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	account, err := s.queries.GetActiveAccount(ctx, id)
	if err != nil {
		return err
	}

	u := s.ui
	u.Println()
	u.Println(u.KeyValue("Account ID", fmt.Sprintf("%d", account.ID)))
	u.Println(u.KeyValue("Holder", account.Holder))
	u.Println(u.KeyValue("Balance", utils.FormatAmount(account.Balance)))

	if accountHistoryLimit <= 0 {
		return nil
	}

	txs, err := s.queries.ListAccountTransactions(ctx, id, accountHistoryLimit)
	if err != nil {
		return err
	}
	u.Section("Recent transactions")
	u.Println(renderTransactions(u, txs))
	return nil
}

func runAccountsCreate(ctx context.Context, s *session, args []string) error {
	balance, err := parseAmount(accountInitialBalance)
	if err != nil {
		return err
	}

	id, err := s.queries.CreateAccount(ctx, args[0], balance)
	if err != nil {
		return err
	}
	s.log.Debug().Int64("account_id", id).Str("balance", utils.FormatAmount(balance)).Msg("account created")
	s.ui.Println(s.ui.Success(fmt.Sprintf("Created account %d for %s", id, args[0])))
	return nil
}

func runAccountsRename(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := s.queries.UpdateHolderName(ctx, id, args[1]); err != nil {
		return err
	}
	s.ui.Println(s.ui.Success(fmt.Sprintf("Account %d renamed to %s", id, args[1])))
	return nil
}

func runAccountsDelete(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := s.queries.SoftDeleteAccount(ctx, id); err != nil {
		return err
	}
	s.ui.Println(s.ui.Success(fmt.Sprintf("Account %d deleted", id)))
	return nil
}

func runAccountsAdjust(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	delta, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	if err := s.queries.AdjustBalance(ctx, id, delta); err != nil {
		return err
	}

	balance, err := s.queries.GetAccountBalance(ctx, id)
	if err != nil {
		return err
	}
	s.ui.Println(s.ui.Success(fmt.Sprintf("Account %d adjusted by %s, balance now %s",
		id, signed(delta), utils.FormatAmount(balance))))
	return nil
}

func runAccountsTotal(ctx context.Context, s *session, args []string) error {
	total, err := s.queries.TotalActiveBalance(ctx)
	if err != nil {
		return err
	}
	s.ui.Println(s.ui.KeyValue("Total balance", utils.FormatMoney(total, "$")))
	return nil
}

// signed renders d with an explicit sign
func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return utils.FormatAmount(d)
	}
	return "+" + utils.FormatAmount(d)
}
