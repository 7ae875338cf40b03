// internal/purchase/priceverify/verifier_test.go
package priceverify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Core Functionality Tests
// ==========================

func TestVerifier_Verify(t *testing.T) {
	verifier := NewVerifier(DefaultConfig())

	tests := []struct {
		name       string
		claimed    float64
		offer      float64
		wantValid  bool
		wantReason string
	}{
		{
			name:      "exact match",
			claimed:   1.50,
			offer:     1.50,
			wantValid: true,
		},
		{
			name:      "within one percent above",
			claimed:   1.509,
			offer:     1.50,
			wantValid: true,
		},
		{
			name:      "within one percent below",
			claimed:   1.491,
			offer:     1.50,
			wantValid: true,
		},
		{
			name:       "beyond tolerance",
			claimed:    1.60,
			offer:      1.50,
			wantValid:  false,
			wantReason: "offer may have changed",
		},
		{
			name:       "offer dropped since render",
			claimed:    2.00,
			offer:      1.00,
			wantValid:  false,
			wantReason: "offer may have changed",
		},
		{
			name:       "below absolute floor",
			claimed:    0.001,
			offer:      0.001,
			wantValid:  false,
			wantReason: "price below minimum of 0.01",
		},
		{
			name:       "zero claimed price",
			claimed:    0,
			offer:      1.50,
			wantValid:  false,
			wantReason: "price below minimum of 0.01",
		},
		{
			name:       "negative claimed price",
			claimed:    -5,
			offer:      1.50,
			wantValid:  false,
			wantReason: "price below minimum of 0.01",
		},
		{
			name:       "above absolute ceiling",
			claimed:    5000,
			offer:      5000,
			wantValid:  false,
			wantReason: "price above maximum of 1000.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := verifier.Verify(tt.claimed, tt.offer)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.offer, result.FreshPrice)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
		})
	}
}

func TestVerifier_Verify_ReportsDiff(t *testing.T) {
	verifier := NewVerifier(DefaultConfig())

	result := verifier.Verify(1.00, 1.25)
	assert.False(t, result.Valid)
	assert.InDelta(t, 0.25, result.PriceDiff, 1e-9)
}

func TestVerifier_Verify_CustomTolerance(t *testing.T) {
	config := DefaultConfig()
	config.TolerancePct = 0.10
	verifier := NewVerifier(config)

	assert.True(t, verifier.Verify(1.09, 1.00).Valid)
	assert.False(t, verifier.Verify(1.11, 1.00).Valid)
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero min price", mutate: func(c *Config) { c.MinPrice = 0 }, wantErr: true},
		{name: "max below min", mutate: func(c *Config) { c.MaxPrice = 0.001 }, wantErr: true},
		{name: "tolerance too large", mutate: func(c *Config) { c.TolerancePct = 1 }, wantErr: true},
		{name: "zero tolerance", mutate: func(c *Config) { c.TolerancePct = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
