// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored when not present
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root so
// tools and tests can run from nested directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "numshop"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Database.Elasticsearch.AuditIndex == "" {
		cfg.Database.Elasticsearch.AuditIndex = "purchase-audit"
	}

	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}

	if cfg.Purchase.DailySpendLimit == 0 {
		cfg.Purchase.DailySpendLimit = 100.0
	}
	if cfg.Purchase.VelocityPerMinute == 0 {
		cfg.Purchase.VelocityPerMinute = 5
	}
	if cfg.Purchase.VelocityPerHour == 0 {
		cfg.Purchase.VelocityPerHour = 30
	}
	if cfg.Purchase.LockTTL == 0 {
		cfg.Purchase.LockTTL = 60 * time.Second
	}
	if cfg.Purchase.MinPrice == 0 {
		cfg.Purchase.MinPrice = 0.01
	}
	if cfg.Purchase.MaxPrice == 0 {
		cfg.Purchase.MaxPrice = 1000.0
	}
	if cfg.Purchase.PriceTolerancePct == 0 {
		cfg.Purchase.PriceTolerancePct = 0.01
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Purchase.DailySpendLimit < 0 {
		return fmt.Errorf("purchase.daily_spend_limit must not be negative")
	}
	if cfg.Purchase.VelocityPerMinute <= 0 || cfg.Purchase.VelocityPerHour <= 0 {
		return fmt.Errorf("purchase velocity limits must be positive")
	}
	if cfg.Purchase.LockTTL <= 0 {
		return fmt.Errorf("purchase.lock_ttl must be positive")
	}
	if cfg.Purchase.MinPrice <= 0 || cfg.Purchase.MaxPrice <= cfg.Purchase.MinPrice {
		return fmt.Errorf("purchase price bounds are inconsistent")
	}
	if cfg.Purchase.PriceTolerancePct <= 0 || cfg.Purchase.PriceTolerancePct >= 1 {
		return fmt.Errorf("purchase.price_tolerance_pct must be in (0, 1)")
	}
	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when SNS alerts are enabled")
	}
	return nil
}
