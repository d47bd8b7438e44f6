package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/ui"
	"github.com/willfong/fund-playground/internal/verify"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Assert the fixture data is intact",
	Long: `Run read-only checks against the live fixture data:

  - account verify.account_id has balance verify.expected_balance
  - an active account held by verify.holder exists

Every check runs even when an earlier one fails. Exits 1 if any check
fails. The same checks run as integration tests in internal/verify.`,
	Args: cobra.NoArgs,
	Run:  dbRun(nil, runVerify),
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(ctx context.Context, s *session, args []string) error {
	u := s.ui

	checks, err := verify.Checks(s.queries, s.cfg.Verify)
	if err != nil {
		return err
	}

	u.Section("Checking fixture data")
	outcomes := verify.RunAll(ctx, checks)

	failed := 0
	for _, o := range outcomes {
		if o.Passed() {
			u.Println(u.StatusLine(o.Name, "ok", ui.StatusSuccess))
			continue
		}
		failed++
		u.Println(u.StatusLine(o.Name, o.Err.Error(), ui.StatusError))
		if !verify.IsFailure(o.Err) {
			s.log.Error().Err(o.Err).Str("check", o.Name).Msg("check could not run")
		}
	}
	u.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(outcomes))
	}
	u.Println(u.Success(fmt.Sprintf("All %d checks passed", len(outcomes))))
	return nil
}
