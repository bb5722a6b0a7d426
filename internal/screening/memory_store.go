package screening

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Screening
	ordered []*Screening // insertion order
}

// NewMemoryStore creates an in-memory screening store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*Screening),
	}
}

func (s *MemoryStore) Create(ctx context.Context, rec *Screening) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.byID[rec.ID] = &cp
	s.ordered = append(s.ordered, &cp)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Screening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*Screening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	// Most recent first
	result := make([]*Screening, 0, limit)
	for i := len(s.ordered) - 1; i >= 0 && len(result) < limit; i-- {
		rec := s.ordered[i]
		if filter.Level != "" && string(rec.Assessment.Level) != filter.Level {
			continue
		}
		if filter.SARRequired != nil && rec.Assessment.SARRequired != *filter.SARRequired {
			continue
		}
		cp := *rec
		result = append(result, &cp)
	}
	return result, nil
}
