// Package config contains compile-time defaults for fundctl.
// Most of these can be overridden at runtime through FUND_* environment
// variables, the .env file, a YAML config file or command flags.
package config

import "time"

// =============================================================================
// DATABASE DEFAULTS
// =============================================================================

const (
	// DBHost is the address of the playground database
	DBHost = "127.0.0.1"

	// DBPort is the MySQL/MariaDB port
	DBPort = 3306

	// DBUser is the account the scripts connect as
	DBUser = "root"

	// DBName is the schema holding accounts and transactions
	DBName = "fund_playground_db"

	// PasswordEnvVar is the environment variable that must supply the password
	PasswordEnvVar = "DB_PASSWORD"

	// DBMaxOpenConns keeps every command on a single connection
	DBMaxOpenConns = 1

	// DBMaxIdleConns is maximum idle connections in the pool
	DBMaxIdleConns = 1

	// DBConnMaxLifetime is how long a connection can be reused
	DBConnMaxLifetime = 5 * time.Minute

	// DBConnectTimeout bounds the initial ping
	DBConnectTimeout = 10 * time.Second
)

// =============================================================================
// SCRIPT DEFAULTS
// =============================================================================

// Ad-hoc deposit inserted by the report command
const (
	ReportDepositAccountID   = 1
	ReportDepositAmount      = "77.77"
	ReportDepositDescription = "Test deposit from fundctl"
)

// Synthetic deposit generation
const (
	// GenerateCount is how many deposits a bare `fundctl generate` attempts
	GenerateCount = 10

	// GenerateMinAmount and GenerateMaxAmount bound the uniform draw
	GenerateMinAmount = "5.00"
	GenerateMaxAmount = "500.00"

	// GenerateDescriptionWords is the nominal word count of a description
	GenerateDescriptionWords = 4
)

// Fixture expectations for the verify suite. Update ExpectedBalance when the
// fixture data changes: SELECT balance FROM accounts WHERE account_id = 1;
const (
	VerifyAccountID       = 1
	VerifyExpectedBalance = "969.25"
	VerifyHolder          = "Bob The Builder"
)

// =============================================================================
// REPLICATION DEFAULTS
// =============================================================================

const (
	ReplicationServerID       = 101
	ReplicationFlavor         = "mysql"
	ReplicationUser           = "repl"
	ReplicationPasswordEnvVar = "MYSQL_REPLICATOR_PASSWORD"
	ReplicationCheckpointFile = "last_gtid.txt"
)

// ReplicationTables are watched when no filter is given
var ReplicationTables = []string{"accounts", "transactions"}

// =============================================================================
// FILES
// =============================================================================

const (
	// EnvFile is the dotenv file read from the working directory
	EnvFile = ".env"

	// ExportDir is where `transactions export` writes by default
	ExportDir = "./output"
)
