package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/config"
	"github.com/willfong/fund-playground/internal/generator"
	"github.com/willfong/fund-playground/internal/ui"
	"github.com/willfong/fund-playground/internal/utils"
)

var (
	// Generation parameters (frequently changed)
	genCount     int
	genSeed      int64
	genMinAmount string
	genMaxAmount string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic deposits",
	Long: `Generate synthetic deposits against active accounts.

Each iteration picks an active account at random, draws an amount between
the configured bounds (rounded up to the cent) and a short description, then
credits the account and records the deposit in one database transaction.
A failed iteration is rolled back and logged; the run continues.

Example:
  fundctl generate                 # 10 deposits
  fundctl generate --count 500
  fundctl generate --seed 42       # Reproducible`,
	Args: cobra.NoArgs,
	Run:  dbRun(generateOverrides, runGenerate),
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&genCount, "count", "n", config.GenerateCount, "number of deposits to attempt")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed for reproducibility (0 = random)")
	generateCmd.Flags().StringVar(&genMinAmount, "min", config.GenerateMinAmount, "minimum deposit amount")
	generateCmd.Flags().StringVar(&genMaxAmount, "max", config.GenerateMaxAmount, "maximum deposit amount")
}

func generateOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("count") {
		cfg.Generate.Count = genCount
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generate.Seed = genSeed
	}
	if cmd.Flags().Changed("min") {
		cfg.Generate.MinAmount = genMinAmount
	}
	if cmd.Flags().Changed("max") {
		cfg.Generate.MaxAmount = genMaxAmount
	}
}

func runGenerate(ctx context.Context, s *session, args []string) error {
	u := s.ui
	gc := s.cfg.Generate

	minAmount, maxAmount, err := gc.AmountRange()
	if err != nil {
		return err
	}

	u.Println()
	u.Println(u.Header("Deposit Generator"))
	u.Println()
	u.Println(u.KeyValue("Deposits", fmt.Sprintf("%d", gc.Count)))
	u.Println(u.KeyValue("Amounts", fmt.Sprintf("%s - %s", utils.FormatAmount(minAmount), utils.FormatAmount(maxAmount))))
	if gc.Seed != 0 {
		u.Println(u.KeyValue("Seed", fmt.Sprintf("%d", gc.Seed)))
	}
	u.Println()

	gen, err := generator.New(s.queries, generator.Config{
		MinAmount:        minAmount,
		MaxAmount:        maxAmount,
		DescriptionWords: gc.DescriptionWords,
		Seed:             gc.Seed,
	}, s.log)
	if err != nil {
		return err
	}

	var bar *ui.ProgressBar
	gen.OnStart = func(accounts, count int) {
		bar = u.NewProgressBar("Deposits", count)
	}
	gen.OnDeposit = func(d generator.Deposit) {
		if d.Committed() {
			bar.Step(true, fmt.Sprintf("Transaction ID %d, account %d, amount %s",
				d.TransactionID, d.AccountID, utils.FormatAmount(d.Amount)))
			return
		}
		bar.Step(false, fmt.Sprintf("account %d, amount %s: %v",
			d.AccountID, utils.FormatAmount(d.Amount), d.Err))
	}

	result, err := gen.Run(ctx, gc.Count)
	if result == nil || (err != nil && !generator.IsCanceled(err)) {
		return err
	}

	if result.NoAccounts() {
		u.Println(u.Warning("No active accounts found. Cannot generate transactions."))
		return nil
	}

	status := "Success"
	if err != nil {
		bar.Fail(err)
		status = "Interrupted"
	} else {
		bar.Complete()
		if result.Failed > 0 {
			status = "Completed with errors"
		}
	}

	u.Println()
	printGenerateSummary(u, result, status)
	return nil
}

// printGenerateSummary prints a styled generation summary
func printGenerateSummary(u *ui.UI, result *generator.Result, status string) {
	items := []ui.KV{
		{Key: "Requested", Value: fmt.Sprintf("%d", result.Requested)},
		{Key: "Committed", Value: fmt.Sprintf("%d", result.Succeeded)},
		{Key: "Rolled back", Value: fmt.Sprintf("%d", result.Failed)},
		{Key: "Accounts", Value: fmt.Sprintf("%d", result.AccountCount)},
		{Key: "Deposited", Value: utils.FormatMoney(result.Total, "$")},
		{Key: "Seed", Value: fmt.Sprintf("%d", result.Seed)},
		{Key: "Duration", Value: result.Duration.Round(1 * 1e6).String()},
		{Key: "Status", Value: status},
	}

	u.Println(u.SummaryBox("Generation Complete", items))
}
