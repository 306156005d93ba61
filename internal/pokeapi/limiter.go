package pokeapi

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxPause bounds how long the upstream can make us wait in one go.
const maxPause = time.Minute

// Limiter spaces outbound requests by a minimum interval. One Limiter is
// shared by every client and seeding run in the process.
type Limiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

// NewLimiter returns a limiter admitting one request per interval.
// A non-positive interval disables spacing.
func NewLimiter(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the caller may send a request or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		d := time.Until(l.pausedUntil)
		l.mu.Unlock()
		if d <= 0 {
			break
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// PauseUntil holds every caller until t. An earlier deadline never shortens
// a pause already in place.
func (l *Limiter) PauseUntil(t time.Time) {
	if limit := time.Now().Add(maxPause); t.After(limit) {
		t = limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if t.After(l.pausedUntil) {
		l.pausedUntil = t
	}
}

// PausedUntil returns the current pause deadline, zero when not paused.
func (l *Limiter) PausedUntil() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Now().After(l.pausedUntil) {
		return time.Time{}
	}
	return l.pausedUntil
}
