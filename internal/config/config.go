package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ErrMissingPassword is returned when no database password could be found in
// the environment or the .env file.
var ErrMissingPassword = errors.New("database password missing")

// envPrefix namespaces the override variables (FUND_DATABASE_HOST etc.)
const envPrefix = "fund"

// Config holds all configuration for fundctl
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Report      ReportConfig      `mapstructure:"report"`
	Generate    GenerateConfig    `mapstructure:"generate"`
	Verify      VerifyConfig      `mapstructure:"verify"`
	Replication ReplicationConfig `mapstructure:"replication"`

	// Logging
	Verbose bool `mapstructure:"verbose"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`

	// PasswordEnv names the environment variable the password is read from
	PasswordEnv string `mapstructure:"password_env"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// ReportConfig describes the fixed deposit inserted by the report command
type ReportConfig struct {
	AccountID   int64  `mapstructure:"account_id"`
	Amount      string `mapstructure:"amount"`
	Description string `mapstructure:"description"`
}

// GenerateConfig holds synthetic deposit settings
type GenerateConfig struct {
	// Number of deposits to attempt
	Count int `mapstructure:"count"`

	// Random seed for reproducibility (0 = random)
	Seed int64 `mapstructure:"seed"`

	// Inclusive amount bounds, as decimal strings
	MinAmount string `mapstructure:"min_amount"`
	MaxAmount string `mapstructure:"max_amount"`

	DescriptionWords int `mapstructure:"description_words"`
}

// VerifyConfig holds the fixture values the verify suite asserts against
type VerifyConfig struct {
	AccountID       int64  `mapstructure:"account_id"`
	ExpectedBalance string `mapstructure:"expected_balance"`
	Holder          string `mapstructure:"holder"`
}

// ReplicationConfig holds binlog watcher settings
type ReplicationConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	User           string   `mapstructure:"user"`
	Password       string   `mapstructure:"password"`
	PasswordEnv    string   `mapstructure:"password_env"`
	ServerID       uint32   `mapstructure:"server_id"`
	Flavor         string   `mapstructure:"flavor"`
	CheckpointFile string   `mapstructure:"checkpoint_file"`
	Tables         []string `mapstructure:"tables"`
}

// Options controls where Load looks for configuration
type Options struct {
	// EnvFile is a dotenv file. Missing files are ignored.
	EnvFile string

	// ConfigFile is an optional YAML/TOML/JSON file. It must exist if set.
	ConfigFile string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            DBHost,
			Port:            DBPort,
			User:            DBUser,
			Name:            DBName,
			PasswordEnv:     PasswordEnvVar,
			MaxOpenConns:    DBMaxOpenConns,
			MaxIdleConns:    DBMaxIdleConns,
			ConnMaxLifetime: DBConnMaxLifetime,
			ConnectTimeout:  DBConnectTimeout,
		},
		Report: ReportConfig{
			AccountID:   ReportDepositAccountID,
			Amount:      ReportDepositAmount,
			Description: ReportDepositDescription,
		},
		Generate: GenerateConfig{
			Count:            GenerateCount,
			MinAmount:        GenerateMinAmount,
			MaxAmount:        GenerateMaxAmount,
			DescriptionWords: GenerateDescriptionWords,
		},
		Verify: VerifyConfig{
			AccountID:       VerifyAccountID,
			ExpectedBalance: VerifyExpectedBalance,
			Holder:          VerifyHolder,
		},
		Replication: ReplicationConfig{
			Host:           DBHost,
			Port:           DBPort,
			User:           ReplicationUser,
			PasswordEnv:    ReplicationPasswordEnvVar,
			ServerID:       ReplicationServerID,
			Flavor:         ReplicationFlavor,
			CheckpointFile: ReplicationCheckpointFile,
			Tables:         append([]string(nil), ReplicationTables...),
		},
	}
}

// Load builds a Config from defaults, the optional config file, the dotenv
// file and the process environment, in increasing order of precedence.
// Values in the dotenv file never override variables already set in the
// process environment.
func Load(opts Options) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	passwordEnv := v.GetString("database.password_env")
	replPasswordEnv := v.GetString("replication.password_env")
	if err := v.BindEnv("database.password", passwordEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", passwordEnv, err)
	}
	if err := v.BindEnv("replication.password", replPasswordEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", replPasswordEnv, err)
	}

	if opts.EnvFile != "" {
		dotenv, err := readEnvFile(opts.EnvFile)
		if err != nil {
			return nil, err
		}
		if dotenv != nil {
			applyEnvFile(v, dotenv, map[string]string{
				"database.password":    passwordEnv,
				"replication.password": replPasswordEnv,
			})
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.password_env", cfg.Database.PasswordEnv)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", cfg.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.connect_timeout", cfg.Database.ConnectTimeout)

	v.SetDefault("report.account_id", cfg.Report.AccountID)
	v.SetDefault("report.amount", cfg.Report.Amount)
	v.SetDefault("report.description", cfg.Report.Description)

	v.SetDefault("generate.count", cfg.Generate.Count)
	v.SetDefault("generate.seed", cfg.Generate.Seed)
	v.SetDefault("generate.min_amount", cfg.Generate.MinAmount)
	v.SetDefault("generate.max_amount", cfg.Generate.MaxAmount)
	v.SetDefault("generate.description_words", cfg.Generate.DescriptionWords)

	v.SetDefault("verify.account_id", cfg.Verify.AccountID)
	v.SetDefault("verify.expected_balance", cfg.Verify.ExpectedBalance)
	v.SetDefault("verify.holder", cfg.Verify.Holder)

	v.SetDefault("replication.host", cfg.Replication.Host)
	v.SetDefault("replication.port", cfg.Replication.Port)
	v.SetDefault("replication.user", cfg.Replication.User)
	v.SetDefault("replication.password", cfg.Replication.Password)
	v.SetDefault("replication.password_env", cfg.Replication.PasswordEnv)
	v.SetDefault("replication.server_id", cfg.Replication.ServerID)
	v.SetDefault("replication.flavor", cfg.Replication.Flavor)
	v.SetDefault("replication.checkpoint_file", cfg.Replication.CheckpointFile)
	v.SetDefault("replication.tables", cfg.Replication.Tables)

	v.SetDefault("verbose", cfg.Verbose)
}

// readEnvFile parses a dotenv file with viper. A missing file yields nil.
func readEnvFile(path string) (*viper.Viper, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return dotenv, nil
}

// applyEnvFile copies dotenv values into v for every variable that is not
// already present in the process environment.
func applyEnvFile(v, dotenv *viper.Viper, explicit map[string]string) {
	for _, key := range v.AllKeys() {
		name, ok := explicit[key]
		if !ok {
			name = envName(key)
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		fileKey := strings.ToLower(name)
		if dotenv.IsSet(fileKey) {
			v.Set(key, dotenv.Get(fileKey))
		}
	}
}

// envName returns the FUND_* variable that overrides a config key
func envName(key string) string {
	return strings.ToUpper(envPrefix + "_" + strings.ReplaceAll(key, ".", "_"))
}

// Validate checks settings that do not depend on the database password
func (c *Config) Validate() error {
	var errs []string

	if c.Generate.Count < 0 {
		errs = append(errs, "generate.count must be non-negative")
	}
	if c.Generate.DescriptionWords < 1 {
		errs = append(errs, "generate.description_words must be >= 1")
	}
	if min, max, err := c.Generate.AmountRange(); err != nil {
		errs = append(errs, err.Error())
	} else {
		if !min.IsPositive() {
			errs = append(errs, "generate.min_amount must be positive")
		}
		if max.LessThan(min) {
			errs = append(errs, "generate.max_amount must not be below generate.min_amount")
		}
	}

	if amount, err := decimal.NewFromString(c.Report.Amount); err != nil {
		errs = append(errs, fmt.Sprintf("report.amount is not a decimal: %q", c.Report.Amount))
	} else if !amount.IsPositive() {
		errs = append(errs, "report.amount must be positive")
	}

	if _, err := decimal.NewFromString(c.Verify.ExpectedBalance); err != nil {
		errs = append(errs, fmt.Sprintf("verify.expected_balance is not a decimal: %q", c.Verify.ExpectedBalance))
	}
	if strings.TrimSpace(c.Verify.Holder) == "" {
		errs = append(errs, "verify.holder must not be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, "database.max_open_conns must be >= 1")
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, "database.max_idle_conns must be >= 0")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "database.max_idle_conns should not exceed max_open_conns")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", joinErrors(errs))
	}

	return nil
}

// Validate fails fast when the password is absent. It runs before any
// connection attempt.
func (d DatabaseConfig) Validate() error {
	if d.Password == "" {
		return fmt.Errorf("%w: %s environment variable not set", ErrMissingPassword, d.PasswordEnv)
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database host, user and name are required")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("database port %d out of range", d.Port)
	}
	return nil
}

// Addr returns host:port
func (d DatabaseConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// Validate fails fast when the replication password is absent
func (r ReplicationConfig) Validate() error {
	if r.Password == "" {
		return fmt.Errorf("%w: %s environment variable not set", ErrMissingPassword, r.PasswordEnv)
	}
	if r.ServerID == 0 {
		return fmt.Errorf("replication.server_id must be non-zero")
	}
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("replication port %d out of range", r.Port)
	}
	return nil
}

// AmountRange parses the generator bounds
func (g GenerateConfig) AmountRange() (decimal.Decimal, decimal.Decimal, error) {
	min, err := decimal.NewFromString(g.MinAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("generate.min_amount is not a decimal: %q", g.MinAmount)
	}
	max, err := decimal.NewFromString(g.MaxAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("generate.max_amount is not a decimal: %q", g.MaxAmount)
	}
	return min, max, nil
}

// joinErrors joins error messages with newline and bullet points
func joinErrors(errs []string) string {
	result := errs[0]
	for i := 1; i < len(errs); i++ {
		result += "\n  - " + errs[i]
	}
	return result
}
