package pool

import "time"

// Job represents work to be done
type Job struct {
	ID          string
	Fn          func() (any, error)
	RetryPolicy *RetryPolicy
	TTL         time.Duration
	Attempt     int
	LastError   error
	StartTime   time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// WithTTL configures how long a finished job's value stays in the space.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}
