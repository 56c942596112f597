package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Transaction source
	SourceBackend string // csv | sheets | sqlite | memory
	CSVPath       string
	AllowMissing  bool // test-mode override: a missing CSV yields no rows instead of an error

	// SQLite store (ingest target and sqlite source backend)
	SQLiteDBPath string

	// Google Sheets source
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Market data
	MarketOffline  bool
	CurrencyAPIKey string
	StockAPIKey    string
	MarketTimeout  time.Duration

	// User settings document
	SettingsPath string

	// Report sink
	ReportsDir string

	// AMQP (ingest events feeding the report worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		SourceBackend: getEnv("SOURCE_BACKEND", "csv"),
		CSVPath:       getEnv("CSV_PATH", "./data/operations.csv"),
		AllowMissing:  getEnvBool("ALLOW_MISSING_SOURCE", false),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kopilka.db"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Operations"),

		MarketOffline:  getEnvBool("MARKET_OFFLINE", false),
		CurrencyAPIKey: getEnv("CURRENCY_API_KEY", ""),
		StockAPIKey:    getEnv("STOCK_API_KEY", ""),
		MarketTimeout:  getEnvDuration("MARKET_TIMEOUT", 10*time.Second),

		SettingsPath: getEnv("USER_SETTINGS_PATH", "./user_settings.json"),

		ReportsDir: getEnv("REPORTS_DIR", "./reports"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kopilka"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ingest_events"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"csv", "sheets", "sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.SourceBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid source backend '%s': must be one of %v", c.SourceBackend, validBackends))
	}

	if c.SourceBackend == "csv" && c.CSVPath == "" {
		errors = append(errors, "CSV path cannot be empty when using csv backend")
	}

	if c.SourceBackend == "sqlite" || c.AMQPURL != "" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SourceBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	}

	// Outside offline mode both providers need credentials. A missing key is
	// a configuration error, never a silent empty quote list.
	if !c.MarketOffline {
		if c.CurrencyAPIKey == "" {
			errors = append(errors, "currency API key is required unless MARKET_OFFLINE is set")
		}
		if c.StockAPIKey == "" {
			errors = append(errors, "stock API key is required unless MARKET_OFFLINE is set")
		}
	}

	if c.MarketTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid market timeout %v: must be at least 1 second", c.MarketTimeout))
	} else if c.MarketTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid market timeout %v: must be at most 1 minute", c.MarketTimeout))
	}

	if c.SettingsPath == "" {
		errors = append(errors, "user settings path cannot be empty")
	}
	if c.ReportsDir == "" {
		errors = append(errors, "reports directory cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
