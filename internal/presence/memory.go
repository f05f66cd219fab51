package presence

import (
	"context"
	"sync"
)

// MemoryStore keeps presence in process memory. It serves tests and
// single-instance deployments running without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (s *MemoryStore) SetOnline(_ context.Context, identity string, rec Record) error {
	if identity == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identity] = rec
	return nil
}

func (s *MemoryStore) SetOffline(_ context.Context, identity string) error {
	if identity == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identity)
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, identity string) (Record, bool, error) {
	if identity == "" {
		return Record{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[identity]
	return rec, ok, nil
}
