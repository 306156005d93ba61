// Package cache is an optional accelerator in front of read queries. It is
// never authoritative: a miss, an expired entry and a failing backend all
// mean "compute it again".
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend stores encoded values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix. An empty prefix
	// removes everything.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Purger is implemented by backends that keep expired entries until they are
// read or purged.
type Purger interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// UnavailableError wraps any backend or codec failure.
type UnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Stats counts lookups since the layer was created.
type Stats struct {
	Hits   int64
	Misses int64
	Errors int64
}

// HitRate returns hits over lookups, 0 without lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Layer encodes values with msgpack and bounds every backend call by a
// short timeout.
type Layer struct {
	backend   Backend
	opTimeout time.Duration

	hits, misses, errors atomic.Int64
	invalidations        atomic.Uint64
	requests             *prometheus.CounterVec
}

// NewLayer wraps backend. Collectors are registered on reg when it is not nil.
func NewLayer(backend Backend, opTimeout time.Duration, reg prometheus.Registerer) *Layer {
	l := &Layer{
		backend:   backend,
		opTimeout: opTimeout,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pokedex",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by result.",
		}, []string{"op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(l.requests)
	}
	return l
}

func (l *Layer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.opTimeout)
}

// Get decodes the value under key into dst and reports whether it was found.
func (l *Layer) Get(ctx context.Context, key string, dst any) (bool, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	b, err := l.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		l.misses.Add(1)
		l.requests.WithLabelValues("get", "miss").Inc()
		return false, nil
	}
	if err == nil {
		err = msgpack.Unmarshal(b, dst)
	}
	if err != nil {
		return false, l.fail("get", key, err)
	}
	l.hits.Add(1)
	l.requests.WithLabelValues("get", "hit").Inc()
	return true, nil
}

// Set stores value under key for ttl.
func (l *Layer) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := msgpack.Marshal(value)
	if err != nil {
		return l.fail("set", key, err)
	}

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	if err := l.backend.Set(ctx, key, b, ttl); err != nil {
		return l.fail("set", key, err)
	}
	l.requests.WithLabelValues("set", "ok").Inc()
	return nil
}

// Generation returns a counter bumped by every invalidation of this layer.
func (l *Layer) Generation() uint64 {
	return l.invalidations.Load()
}

// SetIfCurrent stores value unless the layer was invalidated after gen was
// read. A value written across an invalidation is removed again. It reports
// whether the value stayed stored.
func (l *Layer) SetIfCurrent(ctx context.Context, key string, value any, ttl time.Duration, gen uint64) (bool, error) {
	if l.Generation() != gen {
		return false, nil
	}
	if err := l.Set(ctx, key, value, ttl); err != nil {
		return false, err
	}
	if l.Generation() == gen {
		return true, nil
	}
	return false, l.Invalidate(ctx, key)
}

// Invalidate removes key.
func (l *Layer) Invalidate(ctx context.Context, key string) error {
	l.invalidations.Add(1)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	if err := l.backend.Delete(ctx, key); err != nil {
		return l.fail("invalidate", key, err)
	}
	l.requests.WithLabelValues("invalidate", "ok").Inc()
	return nil
}

// InvalidatePrefix removes every key starting with prefix.
func (l *Layer) InvalidatePrefix(ctx context.Context, prefix string) error {
	l.invalidations.Add(1)
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	if err := l.backend.DeletePrefix(ctx, prefix); err != nil {
		return l.fail("invalidate_prefix", prefix, err)
	}
	l.requests.WithLabelValues("invalidate_prefix", "ok").Inc()
	return nil
}

// Clear removes every entry.
func (l *Layer) Clear(ctx context.Context) error {
	return l.InvalidatePrefix(ctx, "")
}

// Purge removes expired entries and returns how many were removed. Backends
// that expire entries on their own report 0.
func (l *Layer) Purge(ctx context.Context) (int, error) {
	purger, ok := l.backend.(Purger)
	if !ok {
		return 0, nil
	}
	n, err := purger.DeleteExpired(ctx)
	if err != nil {
		return 0, l.fail("purge", "", err)
	}
	l.requests.WithLabelValues("purge", "ok").Inc()
	return n, nil
}

// Stats returns the lookup counters.
func (l *Layer) Stats() Stats {
	return Stats{
		Hits:   l.hits.Load(),
		Misses: l.misses.Load(),
		Errors: l.errors.Load(),
	}
}

func (l *Layer) fail(op, key string, err error) error {
	l.errors.Add(1)
	l.requests.WithLabelValues(op, "error").Inc()
	return &UnavailableError{Op: op, Key: key, Err: err}
}
