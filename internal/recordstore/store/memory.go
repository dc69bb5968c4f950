package store

import (
	"context"
	"sort"
	"sync"

	"recordsync/internal/records/models"
)

// InMemory keeps records in a map. It is the default backend and the one
// handler tests run against.
type InMemory struct {
	mu      sync.RWMutex
	records map[int64]models.Fields
	lastID  int64
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[int64]models.Fields)}
}

func (s *InMemory) List(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Record{ID: formatID(id), Fields: s.records[id]})
	}
	return out, nil
}

func (s *InMemory) Get(_ context.Context, id models.RecordID) (models.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.records[n]
	if !ok {
		return models.Record{}, notFound(id)
	}
	return models.Record{ID: formatID(n), Fields: fields}, nil
}

func (s *InMemory) Create(_ context.Context, fields models.Fields) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	s.records[s.lastID] = fields
	return models.Record{ID: formatID(s.lastID), Fields: fields}, nil
}

func (s *InMemory) Replace(_ context.Context, id models.RecordID, fields models.Fields) (models.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[n]; !ok {
		return models.Record{}, notFound(id)
	}
	s.records[n] = fields
	return models.Record{ID: formatID(n), Fields: fields}, nil
}

func (s *InMemory) Delete(_ context.Context, id models.RecordID) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[n]; !ok {
		return notFound(id)
	}
	delete(s.records, n)
	return nil
}
