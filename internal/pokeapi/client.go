// Package pokeapi is a rate-limited client for the PokeAPI catalog.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

const (
	headerRetryAfter         = "Retry-After"
	headerRateLimitRemaining = "X-Rate-Limit-Remaining"
	headerRateLimitReset     = "X-Rate-Limit-Reset"

	defaultRetryAfter = time.Second
)

type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     uint
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

type Client struct {
	httpClient *resty.Client
	limiter    *Limiter
	metrics    *Metrics
	logger     *slog.Logger

	maxRetries uint
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewClient creates a client sending every attempt through limiter.
func NewClient(cfg Config, limiter *Limiter, metrics *Metrics) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	// retry.BackOffDelay needs a positive base delay
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Millisecond
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    metrics,
		logger:     slog.Default(),
		maxRetries: cfg.MaxRetries,
		baseDelay:  baseDelay,
		maxDelay:   cfg.RetryMaxDelay,
	}
}

// Metrics returns a snapshot of the request counters.
func (client *Client) Metrics() MetricsSnapshot {
	return client.metrics.Snapshot()
}

// FetchPokemon fetches the raw record for one species id.
func (client *Client) FetchPokemon(ctx context.Context, id int) (Payload, error) {
	body, err := client.get(ctx, fmt.Sprintf("/pokemon/%d", id))
	if err != nil {
		return nil, err
	}
	return Payload(body), nil
}

// FetchGenerationSpeciesIDs returns the species ids of a generation in
// ascending order.
func (client *Client) FetchGenerationSpeciesIDs(ctx context.Context, name string) ([]int, error) {
	body, err := client.get(ctx, "/generation/"+name)
	if err != nil {
		return nil, err
	}

	var generation GenerationResponse
	if err := json.Unmarshal(body, &generation); err != nil {
		return nil, fmt.Errorf("decode generation %s: %w", name, err)
	}

	ids := make([]int, 0, len(generation.PokemonSpecies))
	for _, species := range generation.PokemonSpecies {
		id, err := ResourceID(species.URL)
		if err != nil {
			return nil, fmt.Errorf("generation %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (client *Client) get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	if err := retry.Do(
		func() error {
			b, err := client.getOnce(ctx, path)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetries+1),
		retry.Delay(client.baseDelay),
		retry.MaxDelay(client.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			client.logger.Debug("retrying pokeapi request", "path", path, "attempt", n+1, "error", err)
		}),
	); err != nil {
		return nil, err
	}
	return body, nil
}

func (client *Client) getOnce(ctx context.Context, path string) ([]byte, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := client.httpClient.R().
		SetContext(ctx).
		Get(path)
	latency := time.Since(start)
	if err != nil {
		err = classifyTransportError(ctx, err)
		client.metrics.record(outcomeOf(err), latency, err)
		return nil, err
	}

	client.observeRateLimitHeaders(res.Header())

	err = client.classifyStatus(path, res)
	client.metrics.record(outcomeOf(err), latency, err)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

func (client *Client) classifyStatus(path string, res *resty.Response) error {
	switch status := res.StatusCode(); {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &NotFoundError{Path: path}
	case status == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(res.Header().Get(headerRetryAfter), time.Now())
		client.limiter.PauseUntil(time.Now().Add(retryAfter))
		return &RateLimitedError{RetryAfter: retryAfter}
	case status >= 500:
		return &ServerError{StatusCode: status}
	default:
		return &StatusError{StatusCode: status, Body: string(res.Body())}
	}
}

// observeRateLimitHeaders pauses the shared limiter when the upstream
// reports an exhausted quota.
func (client *Client) observeRateLimitHeaders(header http.Header) {
	remainingHeader := header.Get(headerRateLimitRemaining)
	if remainingHeader == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingHeader)
	if err != nil {
		return
	}
	client.metrics.setRateLimitRemaining(remaining)
	if remaining > 0 {
		return
	}

	reset, err := strconv.ParseInt(header.Get(headerRateLimitReset), 10, 64)
	if err != nil {
		return
	}
	until := time.Unix(reset, 0)
	client.logger.Warn("pokeapi quota exhausted", "reset_at", until)
	client.limiter.PauseUntil(until)
}

func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return defaultRetryAfter
		}
		return min(time.Duration(seconds)*time.Second, maxPause)
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return min(d, maxPause)
		}
		return 0
	}
	return defaultRetryAfter
}

func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &ServerError{Err: err}
}

func outcomeOf(err error) string {
	var (
		notFound    *NotFoundError
		rateLimited *RateLimitedError
		timeout     *TimeoutError
		server      *ServerError
		status      *StatusError
	)
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &notFound):
		return outcomeNotFound
	case errors.As(err, &rateLimited):
		return outcomeRateLimited
	case errors.As(err, &timeout):
		return outcomeTimeout
	case errors.As(err, &server):
		return outcomeServerError
	case errors.As(err, &status):
		return outcomeStatusError
	default:
		return outcomeCanceled
	}
}
