package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/theapemachine/errnie"
)

// Worker processes jobs
type Worker struct {
	pool *Q
	jobs chan Job
}

func (w *Worker) run() {
	for {
		// Announce availability, then wait for the manager to hand over a job.
		select {
		case <-w.pool.ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-w.pool.ctx.Done():
			return
		case job := <-w.jobs:
			result, err := w.processJob(job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(job Job) (any, error) {
	result, err := w.executeWithRetries(job)
	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)

	if err != nil {
		return nil, err
	}

	return result, nil
}

func (w *Worker) executeWithRetries(job Job) (any, error) {
	policy := job.RetryPolicy
	if policy == nil || policy.MaxAttempts < 1 {
		policy = &RetryPolicy{MaxAttempts: 1}
	}

	for job.Attempt = 0; job.Attempt < policy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := policy.delay(job.Attempt)
			errnie.Info("job %s retrying attempt %d after %v", job.ID, job.Attempt+1, delay)

			if err := sleep(w.pool.ctx, delay); err != nil {
				return nil, fmt.Errorf("job %s cancelled during retry: %w", job.ID, err)
			}
		}

		result, err := job.Fn()
		if err == nil {
			return result, nil
		}

		job.LastError = err
		errnie.Info("job %s attempt %d failed with error: %v", job.ID, job.Attempt+1, err)

		if policy.Filter != nil && !policy.Filter(err) {
			break
		}
	}

	if policy.MaxAttempts == 1 {
		return nil, job.LastError
	}

	return nil, fmt.Errorf("all retries failed for job %s: %w", job.ID, job.LastError)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
