package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Import source
	ImportSource         string
	ImportSeedPath       string
	ImportXLSXPath       string
	ImportXLSXSheet      string
	ImportInterval       time.Duration
	ImportLookbackMonths int

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleTimesheetSheet     string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Reporting
	HolidayCountry  string
	ReportCacheTTL  time.Duration
	ReportCacheSize int
}

var (
	validBackends = []string{"memory", "sqlite"}
	validSources  = []string{"memory", "google", "xlsx"}
)

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fteboard.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fteboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "timesheet_imports"),

		ImportSource:         getEnv("IMPORT_SOURCE", "memory"),
		ImportSeedPath:       getEnv("IMPORT_SEED_PATH", ""),
		ImportXLSXPath:       getEnv("IMPORT_XLSX_PATH", ""),
		ImportXLSXSheet:      getEnv("IMPORT_XLSX_SHEET", ""),
		ImportInterval:       getEnvDuration("IMPORT_INTERVAL", 0),
		ImportLookbackMonths: getEnvInt("IMPORT_LOOKBACK_MONTHS", 1),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTimesheetSheet:     getEnv("GOOGLE_TIMESHEET_SHEET", "Timesheet"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		HolidayCountry:  strings.ToUpper(getEnv("HOLIDAY_COUNTRY", "CZ")),
		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 256),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
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

	if !slices.Contains(validSources, c.ImportSource) {
		errors = append(errors, fmt.Sprintf("invalid import source '%s': must be one of %v", c.ImportSource, validSources))
	}

	switch c.ImportSource {
	case "xlsx":
		if c.ImportXLSXPath == "" {
			errors = append(errors, "IMPORT_XLSX_PATH is required when using xlsx import source")
		} else if _, err := os.Stat(c.ImportXLSXPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("timesheet workbook does not exist: %s", c.ImportXLSXPath))
		}
	case "google":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using google import source")
		}
		if c.GoogleTimesheetSheet == "" {
			errors = append(errors, "Google timesheet sheet name is required when using google import source")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for google import source")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ImportSeedPath != "" {
		if _, err := os.Stat(c.ImportSeedPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("import seed file does not exist: %s", c.ImportSeedPath))
		}
	}

	if c.ImportInterval != 0 && c.ImportInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid import interval %v: must be at least 1 minute", c.ImportInterval))
	} else if c.ImportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid import interval %v: must be at most 24 hours", c.ImportInterval))
	}

	if c.ImportLookbackMonths < 0 || c.ImportLookbackMonths > 24 {
		errors = append(errors, fmt.Sprintf("invalid import lookback %d: must be between 0 and 24 months", c.ImportLookbackMonths))
	}

	if len(c.HolidayCountry) != 2 {
		errors = append(errors, fmt.Sprintf("invalid holiday country '%s': must be a two-letter code", c.HolidayCountry))
	}

	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache ttl %v: must not be negative", c.ReportCacheTTL))
	}
	if c.ReportCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// UsesAMQP reports whether an AMQP broker is configured.
func (c *Config) UsesAMQP() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
