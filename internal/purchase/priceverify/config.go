package priceverify

import "fmt"

type Config struct {
	// MinPrice and MaxPrice are absolute bounds on the client-claimed price,
	// independent of the current offer.
	MinPrice float64 `mapstructure:"min_price"`
	MaxPrice float64 `mapstructure:"max_price"`
	// TolerancePct absorbs currency-conversion rounding between UI render
	// and checkout submission.
	TolerancePct float64 `mapstructure:"tolerance_pct"`
}

func DefaultConfig() *Config {
	return &Config{
		MinPrice:     0.01,
		MaxPrice:     1000.0,
		TolerancePct: 0.01,
	}
}

func (c *Config) Validate() error {
	if c.MinPrice <= 0 {
		return fmt.Errorf("min_price must be positive")
	}
	if c.MaxPrice <= c.MinPrice {
		return fmt.Errorf("max_price must exceed min_price")
	}
	if c.TolerancePct <= 0 || c.TolerancePct >= 1 {
		return fmt.Errorf("tolerance_pct must be in (0, 1)")
	}
	return nil
}
