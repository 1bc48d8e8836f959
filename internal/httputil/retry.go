// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// Policy bounds the retry behavior for an external HTTP call.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt. Each further
	// attempt doubles it: base, 2*base, 4*base, ...
	BaseDelay time.Duration

	// Jitter adds up to this fraction of the delay (0..1) as random slack
	// so repeated runs do not retry in lockstep with the rate limiter.
	Jitter float64
}

// DefaultPolicy returns the stock retry policy: 3 attempts, 1 s base
// delay, 10% jitter.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 1 * time.Second, Jitter: 0.1}
}

// Backoff returns the delay to sleep after the given zero-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * p.BaseDelay
	if p.Jitter > 0 {
		d += time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return d
}

// Retryable reports whether an HTTP status code is worth retrying:
// 429 (rate limited) and 5xx server errors.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Sleep waits for the attempt's backoff or until the context is cancelled,
// in which case it returns ctx.Err().
func (p Policy) Sleep(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Backoff(attempt)):
		return nil
	}
}

// Do executes req with client, retrying transport errors and retryable
// status codes per the policy. The response body of a retried attempt is
// closed before sleeping. After exhausting attempts the last response (or
// the last transport error) is returned so the caller can inspect it.
func Do(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !Retryable(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= p.MaxAttempts-1 {
			// Exhausted: hand back whatever the last try produced.
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		if err == nil {
			resp.Body.Close()
		}

		if serr := p.Sleep(ctx, attempt); serr != nil {
			return nil, serr
		}
	}
}
