package lock

import (
	"fmt"
	"time"
)

type Config struct {
	// TTL bounds the critical section. A request that stalls past it loses
	// mutual exclusion automatically, so a hung request cannot permanently
	// wedge the user out.
	TTL time.Duration `mapstructure:"ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		TTL: 60 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}
