package cmd

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Output database schema files",
	Long: `Output the SQL the scripts expect the database to hold.

Available schema types:
  full      accounts and transactions tables (default)
  fixture   seed rows the verify suite asserts against

The schema targets MySQL 8+ and MariaDB 10.6+.

Examples:
  fundctl schema | mysql -u root fund_playground_db
  fundctl schema fixture | mysql -u root fund_playground_db
  fundctl schema full -o schema.sql`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSchema,
}

var schemaOutputFile string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputFile, "output", "o", "", "output file (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) {
	u := newUI()

	schemaType := "full"
	if len(args) > 0 {
		schemaType = args[0]
	}

	var filename string
	switch schemaType {
	case "full":
		filename = "schemas/schema.sql"
	case "fixture":
		filename = "schemas/fixture.sql"
	default:
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Unknown schema type '%s'", schemaType)))
		fmt.Fprintln(os.Stderr, "Valid types: full, fixture")
		os.Exit(1)
	}

	content, err := schemaFS.ReadFile(filename)
	if err != nil {
		exitOnError(u, fmt.Errorf("reading schema: %w", err))
	}

	if schemaOutputFile == "" {
		fmt.Print(string(content))
		return
	}

	dir := filepath.Dir(schemaOutputFile)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitOnError(u, fmt.Errorf("creating directory: %w", err))
		}
	}
	if err := os.WriteFile(schemaOutputFile, content, 0644); err != nil {
		exitOnError(u, fmt.Errorf("writing file: %w", err))
	}
	fmt.Fprintln(os.Stderr, u.Success("Schema written to: "+schemaOutputFile))
}
