package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqliteSlotStore struct {
	db         *sql.DB
	sessionKey string
}

// NewSQLiteSlotStore returns a slot store keeping one row per session key.
func NewSQLiteSlotStore(db *sql.DB, sessionKey string) SlotStore {
	return &sqliteSlotStore{db: db, sessionKey: sessionKey}
}

func (r *sqliteSlotStore) Get(ctx context.Context) (string, error) {
	query := "SELECT value FROM session_slots WHERE session_key = ?"
	var value string
	err := r.db.QueryRowContext(ctx, query, r.sessionKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("could not read session slot: %w", err)
	}
	return value, nil
}

func (r *sqliteSlotStore) Set(ctx context.Context, value string) error {
	query := `
		INSERT INTO session_slots (session_key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, r.sessionKey, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("could not write session slot: %w", err)
	}
	return nil
}

func (r *sqliteSlotStore) Clear(ctx context.Context) error {
	query := "DELETE FROM session_slots WHERE session_key = ?"
	if _, err := r.db.ExecContext(ctx, query, r.sessionKey); err != nil {
		return fmt.Errorf("could not clear session slot: %w", err)
	}
	return nil
}
