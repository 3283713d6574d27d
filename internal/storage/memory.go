package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"surety/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a map. It is the default backend for local runs
// and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]byte)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.records[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = append([]byte(nil), value...)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for k := range s.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, append([]byte(nil), s.records[k]...))
	}
	return out, nil
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }
