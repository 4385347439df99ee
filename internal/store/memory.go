package store

import (
	"context"
	"sort"
	"sync"

	"github.com/AngelCh415/revpipe/internal/models"
)

type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]models.ContentRecord
	byCountry map[string]int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]models.ContentRecord),
		byCountry: make(map[string]int),
	}
}

func (s *MemoryStore) Save(ctx context.Context, rec models.ContentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return ErrDuplicate
	}
	s.records[rec.ID] = rec
	s.byCountry[rec.Unit.Country]++
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return models.ContentRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Status(ctx context.Context) (models.StoreStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.StoreStatus{TotalPosts: len(s.records), PerCountryCounts: make(map[string]int, len(s.byCountry))}
	for c, n := range s.byCountry {
		st.PerCountryCounts[c] = n
	}
	return st, nil
}

// All returns every record, oldest first.
func (s *MemoryStore) All() []models.ContentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContentRecord, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) Close() error { return nil }
