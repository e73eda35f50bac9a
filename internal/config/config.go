// Package config loads the handler configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CALENDAR_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// RefreshPolicy selects how the ledger read model follows mutations.
type RefreshPolicy string

const (
	RefreshMerge   RefreshPolicy = "merge"
	RefreshRefetch RefreshPolicy = "refresh"
)

// Config holds all settings of the handler and the CLI.
type Config struct {
	Port     string
	LogLevel string

	// Storage
	TableServiceURL string
	BlobServiceURL  string
	QueueServiceURL string

	CustomersTable    string
	TransactionsTable string
	PaymentsTable     string
	CurrenciesTable   string
	BalancesTable     string
	UpdatesTable      string

	UploadsContainer    string
	StatementsContainer string
	ImportQueue         string
	StatementQueue      string

	// E-mail
	CommunicationEndpoint string
	SenderAddress         string
	UserEmail             string

	// Identity used when the host does not forward a principal.
	DefaultUserID string

	// Ledger read model
	CacheTTL      time.Duration
	RefreshPolicy RefreshPolicy

	RateLimitRPS   float64
	RateLimitBurst int

	CalendarTimezone string
}

// Load reads .env (current or parent directory) and then the environment.
// Only TABLE_SERVICE_URL is required.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil && !os.IsNotExist(err) {
			slog.Warn("error loading .env file, relying on environment", "error", err)
		}
	}

	cfg := &Config{
		Port:     getEnv("FUNCTIONS_CUSTOMHANDLER_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TableServiceURL: getEnv("TABLE_SERVICE_URL", ""),
		BlobServiceURL:  getEnv("BLOB_SERVICE_URL", ""),
		QueueServiceURL: getEnv("QUEUE_SERVICE_URL", ""),

		CustomersTable:    getEnv("CUSTOMERS_TABLE", "customers"),
		TransactionsTable: getEnv("TRANSACTIONS_TABLE", "transactions"),
		PaymentsTable:     getEnv("PAYMENTS_TABLE", "payments"),
		CurrenciesTable:   getEnv("CURRENCIES_TABLE", "currencies"),
		BalancesTable:     getEnv("BALANCES_TABLE", "balances"),
		UpdatesTable:      getEnv("UPDATES_TABLE", "transactionupdates"),

		UploadsContainer:    getEnv("UPLOADS_CONTAINER", "uploads"),
		StatementsContainer: getEnv("STATEMENTS_CONTAINER", "statements"),
		ImportQueue:         getEnv("IMPORT_QUEUE", "import-jobs"),
		StatementQueue:      getEnv("STATEMENT_QUEUE", "statement-jobs"),

		CommunicationEndpoint: getEnv("COMMUNICATION_SERVICES_ENDPOINT", ""),
		SenderAddress:         getEnv("SENDER_ADDRESS", ""),
		UserEmail:             getEnv("USER_EMAIL", ""),

		DefaultUserID: getEnv("DEFAULT_USER_ID", ""),

		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		RefreshPolicy: RefreshPolicy(strings.ToLower(getEnv("REFRESH_POLICY", string(RefreshMerge)))),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 30),

		CalendarTimezone: getEnv("CALENDAR_TIMEZONE", "Asia/Tehran"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TableServiceURL == "" {
		return fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}
	switch c.RefreshPolicy {
	case RefreshMerge, RefreshRefetch:
	default:
		return fmt.Errorf("invalid REFRESH_POLICY %q: want %q or %q", c.RefreshPolicy, RefreshMerge, RefreshRefetch)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

// Location resolves CalendarTimezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.CalendarTimezone)
	if err != nil {
		slog.Warn("unknown CALENDAR_TIMEZONE, using local time", "timezone", c.CalendarTimezone, "error", err)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid integer value, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	slog.Warn("invalid number value, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid duration value, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}
