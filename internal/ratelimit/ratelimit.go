// Package ratelimit implements a fixed-window per-client request counter
// with lazy expiry. State is process-local and owned exclusively by the
// Limiter; expiry is evaluated at check time, never by a timer.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultLimit allows 100 requests per window.
	DefaultLimit = 100
	// DefaultWindow is 15 minutes.
	DefaultWindow = 15 * time.Minute
)

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per client key over fixed windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

// New builds a limiter. Non-positive arguments fall back to the defaults.
func New(limit int, period time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if period <= 0 {
		period = DefaultWindow
	}
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Check records a request attempt for the key and reports whether it is
// allowed. A rejected request is not counted. Never fails; a client over the
// limit simply receives Allowed=false and the window reset time.
func (l *Limiter) Check(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purgeExpired(now)

	w, ok := l.windows[key]
	if !ok {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}

	// Self-reset once the current window has passed.
	if !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(l.period)
	}

	remaining := l.limit - w.count
	if remaining <= 0 {
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: w.resetAt}
	}

	w.count++
	return Result{Allowed: true, Limit: l.limit, Remaining: remaining - 1, ResetAt: w.resetAt}
}

// Limit returns the per-window request budget.
func (l *Limiter) Limit() int { return l.limit }

// purgeExpired drops windows whose reset time has passed. Opportunistic
// housekeeping only; the per-key self-reset in Check keeps results correct
// even without it. Caller must hold mu.
func (l *Limiter) purgeExpired(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
