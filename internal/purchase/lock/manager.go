// Package lock grants a single-holder, time-bounded critical section per
// user, serializing concurrent purchase attempts. This is a
// single-purchase-per-user serialization point, not a counting semaphore:
// it prevents a double-click or retry storm from passing eligibility twice
// and debiting the wallet twice for the same intent.
package lock

import (
	"context"
	"fmt"

	commonerrors "numshop/internal/common/errors"
	"numshop/internal/common/ids"
	"numshop/internal/common/logger"
	"numshop/internal/kvstore"
)

const ReasonInProgress = "Another purchase in progress"

// Result reports an acquisition attempt. A failed acquisition is an
// expected outcome, not an error.
type Result struct {
	Acquired bool   `json:"acquired"`
	Token    string `json:"token,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type Manager struct {
	config *Config
	kv     kvstore.Store
	logger logger.Logger
}

func NewManager(config *Config, kv kvstore.Store, log logger.Logger) *Manager {
	return &Manager{
		config: config,
		kv:     kv,
		logger: log.WithFields(map[string]interface{}{"component": "purchase-lock"}),
	}
}

// Acquire attempts a conditional set of the user's lock key with a fresh
// random token. The key being present means another attempt holds the lock.
func (m *Manager) Acquire(ctx context.Context, userID string) (*Result, error) {
	token := ids.NewLockToken()

	set, err := m.kv.SetIfAbsent(ctx, lockKey(userID), token, m.config.TTL)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(err)
	}
	if !set {
		return &Result{Acquired: false, Reason: ReasonInProgress}, nil
	}

	return &Result{Acquired: true, Token: token}, nil
}

// Release deletes the lock only when the caller still holds it. A stale
// token after expiry and re-acquisition is a no-op returning false, so a
// slow holder can never delete a newer request's lock.
func (m *Manager) Release(ctx context.Context, userID, token string) (bool, error) {
	key := lockKey(userID)

	current, ok, err := m.kv.Get(ctx, key)
	if err != nil {
		return false, commonerrors.NewStoreUnavailableError(err)
	}
	if !ok || current != token {
		m.logger.Debug("release skipped, lock not held by caller", map[string]interface{}{
			"userId": userID,
			"held":   ok,
		})
		return false, nil
	}

	if err := m.kv.Del(ctx, key); err != nil {
		return false, commonerrors.NewStoreUnavailableError(err)
	}
	return true, nil
}

func lockKey(userID string) string {
	return fmt.Sprintf("purchase:lock:%s", userID)
}
