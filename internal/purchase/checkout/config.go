package checkout

import (
	"numshop/internal/common/config"
	"numshop/internal/purchase/eligibility"
	"numshop/internal/purchase/lock"
	"numshop/internal/purchase/priceverify"
)

// Limits maps the application purchase limits onto the per-component
// configurations. Zero values keep each component's default.
func Limits(cfg config.PurchaseConfig) (*eligibility.Config, *lock.Config, *priceverify.Config) {
	elig := eligibility.DefaultConfig()
	if cfg.DailySpendLimit != 0 {
		elig.DailySpendLimit = cfg.DailySpendLimit
	}
	if cfg.VelocityPerMinute != 0 {
		elig.VelocityPerMinute = cfg.VelocityPerMinute
	}
	if cfg.VelocityPerHour != 0 {
		elig.VelocityPerHour = cfg.VelocityPerHour
	}

	lk := lock.DefaultConfig()
	if cfg.LockTTL != 0 {
		lk.TTL = cfg.LockTTL
	}

	prices := priceverify.DefaultConfig()
	if cfg.MinPrice != 0 {
		prices.MinPrice = cfg.MinPrice
	}
	if cfg.MaxPrice != 0 {
		prices.MaxPrice = cfg.MaxPrice
	}
	if cfg.PriceTolerancePct != 0 {
		prices.TolerancePct = cfg.PriceTolerancePct
	}

	return elig, lk, prices
}
