package repository

import (
	"context"
	"sync"
)

type memorySlotStore struct {
	mu    sync.RWMutex
	value string
	set   bool
}

// NewMemorySlotStore returns a process-local slot store.
func NewMemorySlotStore() SlotStore {
	return &memorySlotStore{}
}

func (r *memorySlotStore) Get(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.set {
		return "", ErrNotFound
	}
	return r.value, nil
}

func (r *memorySlotStore) Set(_ context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value, r.set = value, true
	return nil
}

func (r *memorySlotStore) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value, r.set = "", false
	return nil
}
