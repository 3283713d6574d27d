package memory

import (
	"context"
	"sync"

	audit "surety/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Wallet] = append(s.events[event.Wallet], event)
	return nil
}

func (s *InMemoryStore) ListByWallet(_ context.Context, wallet string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[wallet]...), nil
}

// ListRecent returns up to limit events across all wallets, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, evs := range s.events {
		all = append(all, evs...)
	}
	sortByTime(all)
	if start := len(all) - limit; start > 0 {
		all = all[start:]
	}
	return all, nil
}
