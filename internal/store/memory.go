package store

import (
	"context"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory subscriber set.
// Membership is lost on restart; use it for tests and throwaway deployments.
type MemoryStore struct {
	mu sync.RWMutex

	// ids keeps insertion order; index maps id to presence.
	ids   []int64
	index map[int64]struct{}
}

// NewMemoryStore creates a MemoryStore seeded with ids.
func NewMemoryStore(ids ...int64) *MemoryStore {
	s := &MemoryStore{index: make(map[int64]struct{})}
	for _, id := range ids {
		s.insert(id)
	}
	return s
}

// List returns a copy of the current members.
func (s *MemoryStore) List(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// Add inserts id unless present.
func (s *MemoryStore) Add(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(id), nil
}

// Remove deletes id if present.
func (s *MemoryStore) Remove(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return false, nil
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) insert(id int64) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}
