package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestConcurrentBalanceSafetyProperty checks that concurrent read-modify-write
// operations on the same key end with the sequential result.
func TestConcurrentBalanceSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initialBalance := rapid.Int64Range(1000, 100000).Draw(t, "initialBalance")
		amounts := rapid.SliceOfN(rapid.Int64Range(-500, 500), 2, 20).Draw(t, "amounts")
		bettorID := rapid.Int64Range(1, 1000000).Draw(t, "bettorID")

		expected := initialBalance
		for _, a := range amounts {
			expected += a
		}

		kl := NewKeyedLock()
		balance := initialBalance

		var wg sync.WaitGroup
		wg.Add(len(amounts))
		for _, a := range amounts {
			go func(amount int64) {
				defer wg.Done()
				_ = kl.WithLock(context.Background(), bettorID, func() error {
					balance += amount
					return nil
				})
			}(a)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance mismatch: expected %d, got %d", expected, balance)
		}
		if kl.Len() != 0 {
			t.Fatalf("expected no retained keys, got %d", kl.Len())
		}
	})
}

// TestIndependentKeysProperty checks that holding one key never blocks another.
func TestIndependentKeysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(1, 1000).Draw(t, "a")
		b := rapid.Int64Range(1001, 2000).Draw(t, "b")

		kl := NewKeyedLock()
		if err := kl.Lock(context.Background(), a); err != nil {
			t.Fatalf("lock a: %v", err)
		}
		if !kl.TryLock(b) {
			t.Fatalf("key %d blocked by key %d", b, a)
		}
		kl.Unlock(b)
		kl.Unlock(a)
	})
}

func TestLock_TimeoutWhileHeld(t *testing.T) {
	kl := NewKeyedLock()
	require.NoError(t, kl.Lock(context.Background(), 7))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := kl.Lock(ctx, 7)
	assert.ErrorIs(t, err, ErrLockTimeout)

	kl.Unlock(7)
	assert.Equal(t, 0, kl.Len())
}

func TestLock_Canceled(t *testing.T) {
	kl := NewKeyedLock()
	require.NoError(t, kl.Lock(context.Background(), 7))
	defer kl.Unlock(7)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := kl.Lock(ctx, 7)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTryLock(t *testing.T) {
	kl := NewKeyedLock()
	assert.True(t, kl.TryLock(1))
	assert.False(t, kl.TryLock(1))
	kl.Unlock(1)
	assert.True(t, kl.TryLock(1))
	kl.Unlock(1)
	assert.Equal(t, 0, kl.Len())
}

func TestWithLock_ReturnsFnError(t *testing.T) {
	kl := NewKeyedLock()
	errBoom := errors.New("boom")

	err := kl.WithLock(context.Background(), 3, func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, kl.TryLock(3), "key must be released after fn fails")
	kl.Unlock(3)
}

func TestUnlock_UnheldKeyPanics(t *testing.T) {
	kl := NewKeyedLock()
	assert.Panics(t, func() { kl.Unlock(42) })
}
