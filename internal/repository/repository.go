package repository

import "context"

// SlotStore is the single-slot durable store remembering the active thread id
// of one session. It survives a restart of the session client; the slot is
// last-writer-wins.
type SlotStore interface {
	// Get returns ErrNotFound when the slot is empty.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}
