package quota

import (
	"context"
	"sync"
)

// MemorySource is an in-process Source for development and tests.
type MemorySource struct {
	mu   sync.RWMutex
	data map[string]int
}

func NewMemorySource() *MemorySource {
	return &MemorySource{data: make(map[string]int)}
}

func (s *MemorySource) Get(ctx context.Context, ownerID string) (Counter, error) {
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.data[ownerID]
	return Counter{Remaining: n, Set: ok}, nil
}

func (s *MemorySource) Update(ctx context.Context, ownerID string, remaining int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if remaining < 0 {
		remaining = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ownerID] = remaining
	return nil
}

func (s *MemorySource) Decrement(ctx context.Context, ownerID string, start int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.data[ownerID]
	if !ok {
		n = start
	}
	n--
	if n < 0 {
		n = 0
	}
	s.data[ownerID] = n
	return n, nil
}

var (
	_ Source      = (*MemorySource)(nil)
	_ Decrementer = (*MemorySource)(nil)
)
