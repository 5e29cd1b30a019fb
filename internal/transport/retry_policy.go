package transport

import "time"

// RetryPolicy decides whether one attempt against a pinned request shape is
// worth repeating. Only server errors and transport failures retry; a client
// error means the shape itself is wrong and the explorer should advance.
type RetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewRetryPolicy builds a policy with bounded linear backoff.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    10 * time.Second,
	}
}

// ShouldRetry reports whether attempt (zero-based) may be repeated for the
// given outcome.
func (p *RetryPolicy) ShouldRetry(outcome Outcome, attempt int) bool {
	if attempt >= p.maxAttempts-1 {
		return false
	}
	return outcome == OutcomeServerError || outcome == OutcomeTransportFailure
}

// Backoff returns the wait before retry attempt+1. Linear, capped.
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.baseDelay * time.Duration(attempt+1)
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return delay
}

// MaxAttempts exposes the attempt ceiling for loop bounds.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}
