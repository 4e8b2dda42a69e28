package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	LogLevel     string
	Port         int
	DevMode      bool

	// Cycle schedules (cron specs, overridable per deployment)
	BrainCycleSchedule      string
	PublishingCycleSchedule string

	// Decision provider endpoint. Empty disables analysis; publishing still runs.
	AnalyzerURL   string
	AnalyzerToken string

	// Global Twitter credentials, used when a brand has no credential row of its own
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterAccessToken    string
	TwitterAccessSecret   string

	// Snapshot backup target (S3-compatible, e.g. Cloudflare R2)
	BackupEnabled         bool
	BackupAccountID       string
	BackupAccessKeyID     string
	BackupSecretAccessKey string
	BackupBucket          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8080),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/lantern.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		BrainCycleSchedule:      getEnv("BRAIN_CYCLE_SCHEDULE", "0 0 */6 * * *"),
		PublishingCycleSchedule: getEnv("PUBLISHING_CYCLE_SCHEDULE", "0 */10 * * * *"),

		AnalyzerURL:   getEnv("ANALYZER_URL", ""),
		AnalyzerToken: getEnv("ANALYZER_TOKEN", ""),

		TwitterConsumerKey:    getEnv("TWITTER_CONSUMER_KEY", ""),
		TwitterConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
		TwitterAccessToken:    getEnv("TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessSecret:   getEnv("TWITTER_ACCESS_SECRET", ""),

		BackupEnabled:         getEnvAsBool("BACKUP_ENABLED", false),
		BackupAccountID:       getEnv("BACKUP_ACCOUNT_ID", ""),
		BackupAccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		BackupSecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		BackupBucket:          getEnv("BACKUP_BUCKET", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.BackupEnabled {
		if c.BackupAccessKeyID == "" || c.BackupSecretAccessKey == "" || c.BackupBucket == "" {
			return fmt.Errorf("backup enabled but BACKUP_ACCESS_KEY_ID, BACKUP_SECRET_ACCESS_KEY and BACKUP_BUCKET are not all set")
		}
	}

	// Twitter credentials are optional: brands can carry their own credential rows,
	// and a deployment without any can still run decision cycles.
	return nil
}

// HasGlobalTwitterCredentials reports whether a global fallback token set is configured
func (c *Config) HasGlobalTwitterCredentials() bool {
	return c.TwitterConsumerKey != "" && c.TwitterConsumerSecret != "" &&
		c.TwitterAccessToken != "" && c.TwitterAccessSecret != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
