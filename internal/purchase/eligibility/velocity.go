package eligibility

import (
	"context"
	"time"

	commonerrors "numshop/internal/common/errors"
)

const velocityReason = "Too many purchase attempts, please wait before trying again"

// CheckVelocity increments the per-minute and per-hour attempt counters and
// reports whether the attempt is allowed. The increment happens on every
// call, including attempts later denied elsewhere, so repeated failures
// still throttle. Callers must invoke this at most once per real attempt.
func (c *Checker) CheckVelocity(ctx context.Context, userID string) (*VelocityResult, error) {
	minuteCount, err := c.bump(ctx, "purchase:velocity:minute:"+userID, time.Minute)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(err)
	}
	if minuteCount > int64(c.config.VelocityPerMinute) {
		return &VelocityResult{Allowed: false, Reason: velocityReason}, nil
	}

	hourCount, err := c.bump(ctx, "purchase:velocity:hour:"+userID, time.Hour)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(err)
	}
	if hourCount > int64(c.config.VelocityPerHour) {
		return &VelocityResult{Allowed: false, Reason: velocityReason}, nil
	}

	return &VelocityResult{Allowed: true}, nil
}

// bump applies the lazy-init pattern: the first increment of a fresh window
// also sets the window expiry, avoiding a separate existence check.
func (c *Checker) bump(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.kv.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if _, err := c.kv.Expire(ctx, key, window); err != nil {
			return 0, err
		}
	}
	return count, nil
}
