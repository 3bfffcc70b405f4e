package repository

import "errors"

// ErrNotFound is returned by SlotStore.Get when the slot holds no value.
//
// The service layer checks for this specific error and treats it as "no active
// thread", so callers never see the underlying driver error (`sql.ErrNoRows`,
// `redis.Nil`).
var ErrNotFound = errors.New("repository: not found")
