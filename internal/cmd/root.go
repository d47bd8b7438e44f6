package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/willfong/fund-playground/internal/config"
)

var verbose bool
var noColor bool
var configFile string
var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundctl",
	Short: "Scripts for the fund playground ledger",
	Long: `Scripts for a toy funds ledger held in MySQL/MariaDB.

The database password is read from DB_PASSWORD, either from the process
environment or from a .env file in the working directory. Other settings
can be overridden with FUND_* variables (FUND_DATABASE_HOST, ...) or a
YAML file passed with --config.

Defaults are in internal/config/defaults.go.

Example usage:
  fundctl report
  fundctl generate --count 50 --seed 42
  fundctl verify
  fundctl transactions transfer 1 2 25.00`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and animations")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.EnvFile, "dotenv file to read (missing file is ignored)")

	// Silence usage on error - we'll print our own messages
	rootCmd.SilenceUsage = true

	// Set version template
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// Exit with code
func Exit(code int) {
	os.Exit(code)
}
