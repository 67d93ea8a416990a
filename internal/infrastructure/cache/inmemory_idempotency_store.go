package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps request keys in a process local map.
// Suitable for a single instance and for tests; keys are not shared between
// replicas.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	expiresAt map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryIdempotencyStore(time.Now, 5*time.Minute)
}

func newInMemoryIdempotencyStore(now func() time.Time, sweepEvery time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiresAt: make(map[string]time.Time),
		now:       now,
		stopChan:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(sweepEvery)
	return s
}

// MarkProcessed records key unless a live entry exists
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expiresAt[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiresAt[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key holds a live entry
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expiresAt[key]
	return ok && s.now().Before(exp), nil
}

// Forget drops key so the request can be retried
func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expiresAt, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, exp := range s.expiresAt {
		if !now.Before(exp) {
			delete(s.expiresAt, key)
		}
	}
}

// Size returns the number of stored keys, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiresAt)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
