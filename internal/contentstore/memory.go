package contentstore

import (
	"context"
	"sync"

	"surety/pkg/platform/sentinel"
)

type InMemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{objects: make(map[string][]byte)}
}

func (b *InMemoryBackend) Store(_ context.Context, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[id]; ok {
		return nil
	}
	b.objects[id] = append([]byte(nil), data...)
	return nil
}

func (b *InMemoryBackend) Get(_ context.Context, id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (b *InMemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
