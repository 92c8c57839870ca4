package pool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Q is a fixed-size worker pool that hands results back through a Space.
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *Space
	metrics    *Metrics
	workerMu   sync.Mutex
	workerList []*Worker
	config     *Config
	closeOnce  sync.Once
}

// NewQ creates a pool with the given number of workers. A nil config falls
// back to NewConfig.
func NewQ(ctx context.Context, workers int, config *Config) *Q {
	if workers < 1 {
		workers = 1
	}

	if config == nil {
		config = NewConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:        ctx,
		cancel:     cancel,
		workerList: make([]*Worker, 0, workers),
		jobs:       make(chan Job, workers*10),
		workers:    make(chan chan Job, workers),
		space:      NewSpace(),
		metrics:    NewMetrics(),
		config:     config,
	}

	for i := 0; i < workers; i++ {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	return q
}

// manage hands queued jobs to idle workers.
func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				q.space.Store(job.ID, nil, fmt.Errorf("job %s not started: %w", job.ID, q.ctx.Err()), job.TTL)
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					q.space.Store(job.ID, nil, fmt.Errorf("job %s not started: %w", job.ID, q.ctx.Err()), job.TTL)
					return
				}
			}
		}
	}
}

// Schedule queues fn under id and returns a channel that receives exactly
// one Value once the job has finished.
func (q *Q) Schedule(id string, fn func() (any, error), opts ...JobOption) chan Value {
	ctx, cancel := context.WithTimeout(q.ctx, q.getSchedulingTimeout())
	defer cancel()

	job := Job{
		ID: id,
		Fn: fn,
		RetryPolicy: &RetryPolicy{
			MaxAttempts: 3,
			Strategy:    &ExponentialBackoff{Initial: time.Second},
		},
		StartTime: time.Now(),
	}

	for _, opt := range opts {
		opt(&job)
	}

	select {
	case q.jobs <- job:
		return q.space.Await(id)
	case <-ctx.Done():
		q.metrics.mu.Lock()
		q.metrics.SchedulingFailures++
		q.metrics.mu.Unlock()

		return failed(fmt.Errorf("job scheduling timeout: %w", ctx.Err()))
	}
}

// Capacity is the number of jobs the queue holds before Schedule blocks.
// Callers that keep at most Capacity jobs unfinished never hit the
// scheduling timeout.
func (q *Q) Capacity() int {
	return cap(q.jobs)
}

// Metrics returns the pool's metrics collector.
func (q *Q) Metrics() *Metrics {
	return q.metrics
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Job),
	}

	q.workerMu.Lock()
	q.workerList = append(q.workerList, worker)
	q.workerMu.Unlock()

	q.metrics.mu.Lock()
	q.metrics.WorkerCount++
	q.metrics.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()
}

func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config != nil && q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

// Close stops all workers and releases the result space. Jobs still queued
// are dropped.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()

		q.workerMu.Lock()
		q.workerList = nil
		q.workerMu.Unlock()

		q.space.Close()
	})
}

func failed(err error) chan Value {
	ch := make(chan Value, 1)
	ch <- Value{
		Error:     err,
		CreatedAt: time.Now(),
	}
	close(ch)
	return ch
}
