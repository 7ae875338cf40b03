// internal/purchase/lock/manager_test.go
package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"numshop/internal/common/logger"
	"numshop/internal/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewManager(DefaultConfig(), kvstore.NewRedisStore(client), logger.NewTestLogger(t)), mr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestManager_AcquireAndRelease(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	result, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, result.Acquired)
	assert.NotEmpty(t, result.Token)

	released, err := manager.Release(ctx, "user-1", result.Token)
	require.NoError(t, err)
	assert.True(t, released)

	// Released lock is acquirable again.
	result, err = manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, result.Acquired)
}

func TestManager_Acquire_SecondAttemptRejected(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	first, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, first.Acquired)

	second, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err, "contention is an expected outcome, not an error")
	assert.False(t, second.Acquired)
	assert.Equal(t, ReasonInProgress, second.Reason)
	assert.Empty(t, second.Token)
}

func TestManager_Acquire_DifferentUsersNeverContend(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	a, err := manager.Acquire(ctx, "user-a")
	require.NoError(t, err)
	b, err := manager.Acquire(ctx, "user-b")
	require.NoError(t, err)

	assert.True(t, a.Acquired)
	assert.True(t, b.Acquired)
}

func TestManager_Acquire_ConcurrentSingleWinner(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	const attempts = 10
	acquired := make([]bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := manager.Acquire(ctx, "user-1")
			if err == nil && result.Acquired {
				acquired[i] = true
			}
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, got := range acquired {
		if got {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent acquire succeeds")
}

func TestManager_Release_StaleTokenIsNoOp(t *testing.T) {
	manager, mr := setupManager(t)
	ctx := context.Background()

	first, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, first.Acquired)

	// Lock expires mid-flight and another request re-acquires it.
	mr.FastForward(61 * time.Second)
	second, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, second.Acquired)

	// The late holder's release must not touch the newer lock.
	released, err := manager.Release(ctx, "user-1", first.Token)
	require.NoError(t, err)
	assert.False(t, released)

	released, err = manager.Release(ctx, "user-1", second.Token)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestManager_Release_WrongToken(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	result, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, result.Acquired)

	released, err := manager.Release(ctx, "user-1", "forged-token")
	require.NoError(t, err)
	assert.False(t, released)

	// Real holder can still release.
	released, err = manager.Release(ctx, "user-1", result.Token)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestManager_Release_UnheldLock(t *testing.T) {
	manager, _ := setupManager(t)

	released, err := manager.Release(context.Background(), "user-1", "whatever")
	require.NoError(t, err)
	assert.False(t, released)
}

func TestManager_LockSelfExpires(t *testing.T) {
	manager, mr := setupManager(t)
	ctx := context.Background()

	result, err := manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, result.Acquired)

	mr.FastForward(61 * time.Second)

	// Crash-safety: no release ever happened, yet the lock is free.
	result, err = manager.Acquire(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, result.Acquired)
}
