package pool

import (
	"sync"
	"time"
)

// Value wraps a job result with metadata
type Value struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

// Space stores job results and wakes up anyone awaiting them.
type Space struct {
	mu      sync.Mutex
	values  map[string]Value
	waiting map[string][]chan Value

	cleanupInterval time.Duration
	wg              sync.WaitGroup
	done            chan struct{}
	closeOnce       sync.Once
}

func NewSpace() *Space {
	return newSpace(time.Minute)
}

func newSpace(cleanupInterval time.Duration) *Space {
	s := &Space{
		values:          make(map[string]Value),
		waiting:         make(map[string][]chan Value),
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}

	s.wg.Add(1)
	go s.runCleanup()

	return s
}

// Store records a value and notifies every channel waiting on id.
func (s *Space) Store(id string, value any, err error, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		return
	}

	v := Value{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	s.values[id] = v

	for _, ch := range s.waiting[id] {
		// Await channels are buffered with room for exactly one value.
		ch <- v
		close(ch)
	}
	delete(s.waiting, id)
}

// Await returns a channel that will receive the value when it's available
func (s *Space) Await(id string) chan Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Value, 1)

	if s.values == nil {
		close(ch)
		return ch
	}

	if v, ok := s.values[id]; ok {
		ch <- v
		close(ch)
		return ch
	}

	s.waiting[id] = append(s.waiting[id], ch)
	return ch
}

// Exists reports whether a value is stored under id.
func (s *Space) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[id]
	return ok
}

func (s *Space) runCleanup() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Space) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, v := range s.values {
		if v.TTL > 0 && now.Sub(v.CreatedAt) > v.TTL {
			delete(s.values, id)
		}
	}
}

// Close stops the cleanup loop and closes every channel still waiting.
func (s *Space) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		defer s.mu.Unlock()

		for _, channels := range s.waiting {
			for _, ch := range channels {
				close(ch)
			}
		}

		s.values = nil
		s.waiting = nil
	})
}
