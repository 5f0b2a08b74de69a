// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default throttling values.
const (
	// DefaultThrottleWindow is the fixed window length.
	DefaultThrottleWindow = 15 * time.Minute

	// DefaultMaxAttempts is the number of login attempts allowed per
	// identity within one window.
	DefaultMaxAttempts = 5

	// DefaultSweepInterval is the interval at which the background
	// goroutine evicts expired windows.
	DefaultSweepInterval = 5 * time.Minute
)

// ThrottleConfig configures a LoginThrottle.
type ThrottleConfig struct {
	// Window is the fixed window length. Defaults to
	// DefaultThrottleWindow if zero or negative.
	Window time.Duration

	// MaxAttempts is the attempts allowed per identity per window.
	// Defaults to DefaultMaxAttempts if zero or negative.
	MaxAttempts int

	// SweepInterval is the background eviction interval. Defaults to
	// DefaultSweepInterval if zero.
	SweepInterval time.Duration
}

// attemptWindow tracks one identity's current fixed window.
type attemptWindow struct {
	count int
	start time.Time
}

// LoginThrottle bounds login attempts per client identity using a fixed
// window counter. It is safe for concurrent use: the read-check-increment
// for an identity happens under the mutex, so parallel attempts cannot slip
// past the cap.
//
// The LoginThrottle runs a background goroutine that evicts expired windows.
// Call Close() to stop it and release resources.
type LoginThrottle struct {
	mu          sync.Mutex
	windows     map[string]*attemptWindow
	window      time.Duration
	maxAttempts int
	now         func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup

	// Gauge for tracked identity count (nil if no registry provided).
	identityGauge prometheus.Gauge
}

// NewLoginThrottle creates a throttle with the given configuration and
// starts the background sweeper. Call Close() to stop it.
func NewLoginThrottle(cfg ThrottleConfig) *LoginThrottle {
	return newLoginThrottle(cfg, nil)
}

// NewLoginThrottleWithRegistry additionally registers an identity count
// gauge with the provided Prometheus registry.
func NewLoginThrottleWithRegistry(cfg ThrottleConfig, reg prometheus.Registerer) *LoginThrottle {
	return newLoginThrottle(cfg, reg)
}

func newLoginThrottle(cfg ThrottleConfig, reg prometheus.Registerer) *LoginThrottle {
	window := cfg.Window
	if window <= 0 {
		window = DefaultThrottleWindow
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	t := &LoginThrottle{
		windows:     make(map[string]*attemptWindow),
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}

	if reg != nil {
		t.identityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rbac_throttle_identities",
			Help: "Current number of tracked login throttle identities",
		})
		reg.MustRegister(t.identityGauge)
	}

	t.wg.Add(1)
	go t.sweepLoop(sweepInterval)

	return t
}

// Allow records a login attempt for the identity and reports whether it may
// proceed. Returns (false, retryAfter) once the identity has exhausted its
// window, where retryAfter is the time until the window expires. The count
// advances for every call, so attempts that later fail validation or
// credential checks still consume quota.
func (t *LoginThrottle) Allow(identity string) (allowed bool, retryAfter time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	w, exists := t.windows[identity]
	if !exists || !now.Before(w.start.Add(t.window)) {
		// First attempt, or the previous window has expired.
		t.windows[identity] = &attemptWindow{count: 1, start: now}
		if !exists && t.identityGauge != nil {
			t.identityGauge.Set(float64(len(t.windows)))
		}
		return true, 0
	}

	w.count++
	if w.count > t.maxAttempts {
		return false, w.start.Add(t.window).Sub(now)
	}
	return true, 0
}

// IdentityCount returns the number of tracked identities. Useful for testing
// and monitoring.
func (t *LoginThrottle) IdentityCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// Sweep removes windows that expired before now. Called automatically by the
// background goroutine, but callable directly when immediate eviction is
// wanted.
func (t *LoginThrottle) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for identity, w := range t.windows {
		if !now.Before(w.start.Add(t.window)) {
			delete(t.windows, identity)
		}
	}

	if t.identityGauge != nil {
		t.identityGauge.Set(float64(len(t.windows)))
	}
}

// sweepLoop runs periodic eviction in the background.
func (t *LoginThrottle) sweepLoop(interval time.Duration) {
	defer t.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			return
		case <-ticker.C:
			t.Sweep()
		}
	}
}

// Close stops the background sweeper. It blocks until the goroutine has
// stopped.
func (t *LoginThrottle) Close() {
	close(t.stopChan)
	t.wg.Wait()
}
