package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy retries one model on throttling, server errors and timeouts
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleeper   func(time.Duration)
}

// do runs call until it succeeds, fails permanently or runs out of attempts.
// Exhausted attempts are reported with their count.
func (p retryPolicy) do(ctx context.Context, model string, call func() (string, error)) (string, error) {
	attempts := max(p.attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := call()
		if err == nil {
			return text, nil
		}
		lastErr = err

		wait, retryable := p.waitFor(err, attempt)
		if !retryable || ctx.Err() != nil {
			return "", err
		}
		if attempt == attempts {
			break
		}
		if err := p.pause(ctx, wait); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("gemini generate %s: failed after %d attempts: %w", model, attempts, lastErr)
}

// waitFor classifies err and returns how long to wait before the next attempt.
// A Retry-After header wins over exponential backoff.
func (p retryPolicy) waitFor(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if !retryableStatus(statusErr.StatusCode) {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return min(statusErr.RetryAfter, p.maxDelay), true
		}
		return p.backoff(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// backoff returns baseDelay * 2^(attempt-1), never above maxDelay
func (p retryPolicy) backoff(attempt int) time.Duration {
	shift := min(attempt-1, 16)
	delay := p.baseDelay << shift
	if delay <= 0 || delay > p.maxDelay {
		return p.maxDelay
	}
	return delay
}

func (p retryPolicy) pause(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(wait)
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date
func retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}
