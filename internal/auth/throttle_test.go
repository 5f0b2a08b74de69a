// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewLoginThrottle(t *testing.T) {
	t.Run("uses defaults for zero config", func(t *testing.T) {
		throttle := NewLoginThrottle(ThrottleConfig{})
		defer throttle.Close()

		assert.Equal(t, DefaultThrottleWindow, throttle.window)
		assert.Equal(t, DefaultMaxAttempts, throttle.maxAttempts)
	})

	t.Run("uses custom values", func(t *testing.T) {
		throttle := NewLoginThrottle(ThrottleConfig{
			Window:      time.Minute,
			MaxAttempts: 3,
		})
		defer throttle.Close()

		assert.Equal(t, time.Minute, throttle.window)
		assert.Equal(t, 3, throttle.maxAttempts)
	})
}

func TestLoginThrottle_Allow(t *testing.T) {
	t.Run("allows up to max attempts then rejects", func(t *testing.T) {
		throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: 5})
		defer throttle.Close()

		for i := 1; i <= 5; i++ {
			allowed, retryAfter := throttle.Allow("10.0.0.1")
			assert.True(t, allowed, "attempt %d should be allowed", i)
			assert.Zero(t, retryAfter)
		}

		allowed, retryAfter := throttle.Allow("10.0.0.1")
		assert.False(t, allowed)
		assert.Greater(t, retryAfter, time.Duration(0))
		assert.LessOrEqual(t, retryAfter, DefaultThrottleWindow)
	})

	t.Run("identities are independent", func(t *testing.T) {
		throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: 1})
		defer throttle.Close()

		allowed, _ := throttle.Allow("10.0.0.1")
		assert.True(t, allowed)
		allowed, _ = throttle.Allow("10.0.0.1")
		assert.False(t, allowed)

		allowed, _ = throttle.Allow("10.0.0.2")
		assert.True(t, allowed)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: 5})
		defer throttle.Close()

		now := time.Now()
		throttle.now = func() time.Time { return now }

		for i := 0; i < 6; i++ {
			throttle.Allow("10.0.0.1")
		}
		allowed, _ := throttle.Allow("10.0.0.1")
		assert.False(t, allowed)

		// Advance past the window: the next attempt opens a fresh window
		// with count 1.
		now = now.Add(DefaultThrottleWindow + time.Second)
		allowed, retryAfter := throttle.Allow("10.0.0.1")
		assert.True(t, allowed)
		assert.Zero(t, retryAfter)
		assert.Equal(t, 1, throttle.windows["10.0.0.1"].count)
	})

	t.Run("rejected attempts report time until window end", func(t *testing.T) {
		throttle := NewLoginThrottle(ThrottleConfig{
			Window:      time.Minute,
			MaxAttempts: 1,
		})
		defer throttle.Close()

		now := time.Now()
		throttle.now = func() time.Time { return now }

		throttle.Allow("10.0.0.1")

		now = now.Add(20 * time.Second)
		allowed, retryAfter := throttle.Allow("10.0.0.1")
		assert.False(t, allowed)
		assert.Equal(t, 40*time.Second, retryAfter)
	})
}

func TestLoginThrottle_Concurrency(t *testing.T) {
	const (
		maxAttempts = 5
		parallel    = 50
	)

	throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: maxAttempts})
	defer throttle.Close()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		allowCount int
	)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := throttle.Allow("10.0.0.1"); allowed {
				mu.Lock()
				allowCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// The cap must hold exactly under contention: no race may admit a
	// sixth attempt.
	assert.Equal(t, maxAttempts, allowCount)
}

func TestLoginThrottle_Sweep(t *testing.T) {
	throttle := NewLoginThrottle(ThrottleConfig{})
	defer throttle.Close()

	now := time.Now()
	throttle.now = func() time.Time { return now }

	throttle.Allow("10.0.0.1")
	throttle.Allow("10.0.0.2")
	assert.Equal(t, 2, throttle.IdentityCount())

	// Nothing expired yet.
	throttle.Sweep()
	assert.Equal(t, 2, throttle.IdentityCount())

	now = now.Add(DefaultThrottleWindow + time.Second)
	throttle.Sweep()
	assert.Equal(t, 0, throttle.IdentityCount())
}

func TestLoginThrottle_IdentityGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	throttle := NewLoginThrottleWithRegistry(ThrottleConfig{}, reg)
	defer throttle.Close()

	now := time.Now()
	throttle.now = func() time.Time { return now }

	assert.Equal(t, float64(0), testutil.ToFloat64(throttle.identityGauge))

	// The gauge tracks new identities immediately, not at the next sweep.
	throttle.Allow("10.0.0.1")
	throttle.Allow("10.0.0.2")
	assert.Equal(t, float64(2), testutil.ToFloat64(throttle.identityGauge))

	// Repeat attempts from a known identity do not move it.
	throttle.Allow("10.0.0.1")
	assert.Equal(t, float64(2), testutil.ToFloat64(throttle.identityGauge))

	now = now.Add(DefaultThrottleWindow + time.Second)
	throttle.Sweep()
	assert.Equal(t, float64(0), testutil.ToFloat64(throttle.identityGauge))
}

func TestLoginThrottle_Close(t *testing.T) {
	throttle := NewLoginThrottle(ThrottleConfig{SweepInterval: 10 * time.Millisecond})

	// Close blocks until the sweeper goroutine exits; goleak verifies
	// nothing is left behind.
	throttle.Close()
}
