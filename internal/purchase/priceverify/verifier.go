// Package priceverify re-checks a client-claimed price against the current
// authoritative offer. It must run after the purchase lock is held and
// immediately before the provider call, with a freshly fetched offer, to
// close the race where offer prices move between UI render and checkout
// submission.
package priceverify

import (
	"fmt"
	"math"
)

// Result is derived per request, never persisted.
type Result struct {
	Valid      bool    `json:"valid"`
	FreshPrice float64 `json:"freshPrice"`
	PriceDiff  float64 `json:"priceDiff"`
	Reason     string  `json:"reason,omitempty"`
}

type Verifier struct {
	config *Config
}

func NewVerifier(config *Config) *Verifier {
	return &Verifier{config: config}
}

// Verify is pure and synchronous. Absolute floor/ceiling violations reject
// regardless of the offer; within bounds, the claimed price must sit within
// the configured tolerance of the fresh offer.
func (v *Verifier) Verify(claimedPrice, currentOfferPrice float64) *Result {
	result := &Result{
		FreshPrice: currentOfferPrice,
		PriceDiff:  math.Abs(currentOfferPrice - claimedPrice),
	}

	if claimedPrice < v.config.MinPrice {
		result.Reason = fmt.Sprintf("price below minimum of %.2f", v.config.MinPrice)
		return result
	}
	if claimedPrice > v.config.MaxPrice {
		result.Reason = fmt.Sprintf("price above maximum of %.2f", v.config.MaxPrice)
		return result
	}

	tolerance := currentOfferPrice * v.config.TolerancePct
	if result.PriceDiff > tolerance {
		result.Reason = "offer may have changed"
		return result
	}

	result.Valid = true
	return result
}
