// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Input/output locations
	InputPath     string
	OutputDir     string
	CleanedOutput string
	CSVDelimiter  rune

	// Destination database (nil when persisting to CSV only)
	Postgres *PostgresConfig

	// Load settings
	BatchSize int

	// Scheduling (zero means run once and exit)
	RunInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		InputPath:     getEnv("INPUT_PATH", "data/raw/customer_churn.csv"),
		OutputDir:     getEnv("OUTPUT_DIR", "data/fact_dim_tables"),
		CleanedOutput: getEnv("CLEANED_OUTPUT_PATH", "data/processed/customer_clean.csv"),
		CSVDelimiter:  getEnvAsDelimiter("CSV_DELIMITER", ','),
		BatchSize:     getEnvAsInt("BATCH_SIZE", 1000),
		RunInterval:   time.Duration(getEnvAsInt("RUN_INTERVAL_MINUTES", 0)) * time.Minute,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}

	// The database destination is optional; CSV output always happens
	if os.Getenv("POSTGRES_HOST") != "" || os.Getenv("DATABASE_URL") != "" {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is required")
	}

	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	if c.RunInterval < 0 {
		return errors.New("run interval cannot be negative")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDelimiter(key string, defaultValue rune) rune {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return []rune(valueStr)[0]
}
