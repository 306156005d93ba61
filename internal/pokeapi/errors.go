package pokeapi

import (
	"errors"
	"fmt"
	"time"
)

// NotFoundError is returned when the upstream has no resource at the path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pokeapi: %s not found", e.Path)
}

// RateLimitedError is returned when the upstream answered 429.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("pokeapi: rate limited, retry after %s", e.RetryAfter)
}

// TimeoutError is returned when a single attempt exceeded its deadline.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pokeapi: request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// ServerError is returned for 5xx answers. A StatusCode of 0 means the
// request never got an answer (connection refused, reset, ...).
type ServerError struct {
	StatusCode int
	Err        error
}

func (e *ServerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("pokeapi: transport error: %v", e.Err)
	}
	return fmt.Sprintf("pokeapi: server error: status %d", e.StatusCode)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any other unexpected status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi: unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether err is transient: rate limiting, timeouts and
// server or transport failures.
func IsRetryable(err error) bool {
	var (
		rateLimited *RateLimitedError
		timeout     *TimeoutError
		server      *ServerError
	)
	return errors.As(err, &rateLimited) || errors.As(err, &timeout) || errors.As(err, &server)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
