package util

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with the one question the watcher asks:
// may this event happen now. It throttles repeated per-cycle warnings
// (an unreadable watch path would warn on every poll otherwise).
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a new token bucket limiter.
// r: tokens per second.
// b: burst size.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Allow reports whether an event with weight n may happen now.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}
