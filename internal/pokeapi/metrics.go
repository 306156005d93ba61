package pokeapi

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used for the request counter.
const (
	outcomeSuccess     = "success"
	outcomeNotFound    = "not_found"
	outcomeRateLimited = "rate_limited"
	outcomeTimeout     = "timeout"
	outcomeServerError = "server_error"
	outcomeStatusError = "status_error"
	outcomeCanceled    = "canceled"
)

// MetricsSnapshot is a point-in-time copy of the client counters.
type MetricsSnapshot struct {
	TotalCalls         int64
	Successes          int64
	Failures           int64
	AverageLatency     time.Duration
	LastError          string
	LastErrorAt        time.Time
	RateLimitRemaining int // -1 until the upstream reports it
}

// SuccessRate returns the share of successful calls in [0, 1].
func (s MetricsSnapshot) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.TotalCalls)
}

// Metrics records every request attempt made by a Client.
type Metrics struct {
	mu                 sync.Mutex
	totalCalls         int64
	successes          int64
	failures           int64
	totalLatency       time.Duration
	lastError          string
	lastErrorAt        time.Time
	rateLimitRemaining int

	requests *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewMetrics creates client metrics. Collectors are registered on reg when
// it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rateLimitRemaining: -1,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pokeapi",
			Name:      "requests_total",
			Help:      "Upstream request attempts by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pokeapi",
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *Metrics) record(outcome string, latency time.Duration, err error) {
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.Observe(latency.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalCalls++
	m.totalLatency += latency
	if err == nil {
		m.successes++
		return
	}
	m.failures++
	m.lastError = err.Error()
	m.lastErrorAt = time.Now()
}

func (m *Metrics) setRateLimitRemaining(remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimitRemaining = remaining
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := MetricsSnapshot{
		TotalCalls:         m.totalCalls,
		Successes:          m.successes,
		Failures:           m.failures,
		LastError:          m.lastError,
		LastErrorAt:        m.lastErrorAt,
		RateLimitRemaining: m.rateLimitRemaining,
	}
	if m.totalCalls > 0 {
		s.AverageLatency = m.totalLatency / time.Duration(m.totalCalls)
	}
	return s
}
