// Package eligibility composes ban status, balance sufficiency, daily spend
// cap, and purchase-velocity limits into a single admit/deny decision.
package eligibility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	commonerrors "numshop/internal/common/errors"
	"numshop/internal/common/logger"
	"numshop/internal/kvstore"
)

const (
	ReasonSuspended           = "Account is suspended"
	ReasonNotFound            = "Account not found"
	ReasonInsufficientBalance = "Insufficient balance"
)

// Wallet is the prepaid balance collaborator. Debits are invoked by the
// orchestrating caller, not here.
type Wallet interface {
	GetBalance(ctx context.Context, userID string) (float64, error)
}

type Checker struct {
	config *Config
	db     *sql.DB
	kv     kvstore.Store
	wallet Wallet
	logger logger.Logger
}

func NewChecker(config *Config, db *sql.DB, kv kvstore.Store, wallet Wallet, log logger.Logger) *Checker {
	return &Checker{
		config: config,
		db:     db,
		kv:     kv,
		wallet: wallet,
		logger: log.WithFields(map[string]interface{}{"component": "eligibility"}),
	}
}

// Check runs the sequential short-circuit chain: ban flag, balance, daily
// spend cap, velocity. Each stage fills Details before a denial can return,
// so callers always get full diagnostic context. Velocity runs last because
// it mutates counters on every call; the chain guarantees one increment per
// real attempt.
func (c *Checker) Check(ctx context.Context, userID string, requiredAmount float64) (*Result, error) {
	details := Details{}

	var banned bool
	err := c.db.QueryRowContext(ctx,
		`SELECT is_banned FROM users WHERE user_id = $1`, userID,
	).Scan(&banned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Result{Eligible: false, Reason: ReasonNotFound, Details: details}, nil
		}
		return nil, commonerrors.NewDatabaseUnavailableError(err)
	}
	details.IsBanned = banned
	if banned {
		return &Result{Eligible: false, Reason: ReasonSuspended, Details: details}, nil
	}

	balance, err := c.wallet.GetBalance(ctx, userID)
	if err != nil {
		return nil, commonerrors.NewWalletUnavailableError(err)
	}
	details.HasSufficientBalance = balance >= requiredAmount
	if !details.HasSufficientBalance {
		return &Result{Eligible: false, Reason: ReasonInsufficientBalance, Details: details}, nil
	}

	spent, err := c.dailySpend(ctx, userID)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(err)
	}
	remaining := c.config.DailySpendLimit - spent
	if remaining < 0 {
		remaining = 0
	}
	details.DailySpendRemaining = remaining
	if spent+requiredAmount > c.config.DailySpendLimit {
		reason := fmt.Sprintf("Daily spending limit reached, %.2f remaining today", remaining)
		return &Result{Eligible: false, Reason: reason, Details: details}, nil
	}

	velocity, err := c.CheckVelocity(ctx, userID)
	if err != nil {
		return nil, err
	}
	details.PurchaseVelocityOK = velocity.Allowed
	if !velocity.Allowed {
		return &Result{Eligible: false, Reason: velocity.Reason, Details: details}, nil
	}

	return &Result{Eligible: true, Details: details}, nil
}

// RecordSpend adds a successful purchase amount to the caller's daily
// counter. The counter is never decremented; refunds are a ledger concern.
func (c *Checker) RecordSpend(ctx context.Context, userID string, amount float64) error {
	cents := toCents(amount)
	key := dailySpendKey(userID, time.Now().UTC())

	total, err := c.kv.IncrBy(ctx, key, cents)
	if err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	if total == cents {
		if _, err := c.kv.Expire(ctx, key, c.config.SpendCounterTTL); err != nil {
			c.logger.Warn("failed to set spend counter expiry", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}
	return nil
}

// dailySpend reads the accumulated spend for today, in dollars.
func (c *Checker) dailySpend(ctx context.Context, userID string) (float64, error) {
	key := dailySpendKey(userID, time.Now().UTC())
	val, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	cents, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// A corrupt counter blocks nothing; it only loses cap accounting.
		c.logger.Warn("unparseable daily spend counter", map[string]interface{}{
			"userId": userID,
			"value":  val,
		})
		return 0, nil
	}
	return float64(cents) / 100, nil
}

func dailySpendKey(userID string, day time.Time) string {
	return fmt.Sprintf("purchase:spend:%s:%s", userID, day.Format("2006-01-02"))
}

// Amounts are stored in the counter as integer cents so increments stay
// atomic.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
