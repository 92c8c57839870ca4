package pool

import (
	"math"
	"time"
)

// RetryPolicy defines retry behavior
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

func (rp *RetryPolicy) delay(attempt int) time.Duration {
	if rp.Strategy == nil {
		return 0
	}
	return rp.Strategy.NextDelay(attempt)
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements RetryStrategy
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

// WithRetry configures retry behavior for a job. A nil strategy retries
// immediately.
func WithRetry(attempts int, strategy RetryStrategy) JobOption {
	return func(j *Job) {
		j.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
		}
	}
}

// WithRetryFilter stops retrying as soon as filter returns false for an error.
func WithRetryFilter(filter func(error) bool) JobOption {
	return func(j *Job) {
		if j.RetryPolicy == nil {
			j.RetryPolicy = &RetryPolicy{MaxAttempts: 1}
		}
		j.RetryPolicy.Filter = filter
	}
}
