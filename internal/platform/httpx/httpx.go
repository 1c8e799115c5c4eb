// Package httpx holds retry policy shared by outbound API clients.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// MaxRetryWait caps both exponential waits and server Retry-After hints.
const MaxRetryWait = 10 * time.Second

// StatusError is a non-2xx reply from an upstream API.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// NewStatusError reads the Retry-After hint from resp.
func NewStatusError(service string, resp *http.Response, body []byte) *StatusError {
	return &StatusError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		RetryAfter: ParseRetryAfter(resp.Header, MaxRetryWait),
	}
}

func IsRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// IsRetryable reports transient failures. A cancelled or expired context is
// never retryable since the caller's budget is already spent.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var coded interface{ HTTPStatusCode() int }
	if errors.As(err, &coded) {
		return IsRetryableStatus(coded.HTTPStatusCode())
	}
	return false
}

// ParseRetryAfter returns the delay-seconds form of Retry-After capped at max,
// or 0 when the header is absent or not a positive integer.
func ParseRetryAfter(h http.Header, max time.Duration) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if max > 0 && d > max {
		d = max
	}
	return d
}

// Retry runs op, then up to retries more times while it fails with a
// retryable error. Waits start at one second and double with 20% jitter; a
// StatusError carrying RetryAfter waits that long instead. notify may be nil.
// The returned error is op's last error unless ctx ended first.
func Retry[T any](ctx context.Context, retries int, notify func(attempt int, err error, wait time.Duration), op func() (T, error)) (T, error) {
	if retries < 0 {
		retries = 0
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxInterval = MaxRetryWait

	var (
		attempt int
		lastErr error
	)
	wrapped := func() (T, error) {
		attempt++
		v, err := op()
		lastErr = err
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > 0 {
			return v, errors.Join(err, &backoff.RetryAfterError{Duration: se.RetryAfter})
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(retries) + 1),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			notify(attempt, lastErr, wait)
		}))
	}
	v, err := backoff.Retry(ctx, wrapped, opts...)
	if err != nil && lastErr != nil && ctx.Err() == nil {
		return v, lastErr
	}
	return v, err
}
