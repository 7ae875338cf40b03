package eligibility

import (
	"fmt"
	"time"
)

type Config struct {
	DailySpendLimit   float64       `mapstructure:"daily_spend_limit"`
	VelocityPerMinute int           `mapstructure:"velocity_per_minute"`
	VelocityPerHour   int           `mapstructure:"velocity_per_hour"`
	SpendCounterTTL   time.Duration `mapstructure:"spend_counter_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		DailySpendLimit:   100.0,
		VelocityPerMinute: 5,
		VelocityPerHour:   30,
		SpendCounterTTL:   48 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.DailySpendLimit < 0 {
		return fmt.Errorf("daily_spend_limit must not be negative")
	}
	if c.VelocityPerMinute <= 0 {
		return fmt.Errorf("velocity_per_minute must be positive")
	}
	if c.VelocityPerHour <= 0 {
		return fmt.Errorf("velocity_per_hour must be positive")
	}
	if c.SpendCounterTTL < 24*time.Hour {
		return fmt.Errorf("spend_counter_ttl must cover at least one calendar day")
	}
	return nil
}
