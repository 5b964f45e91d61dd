package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// mysqlStore implements StateStore on the client_state table
type mysqlStore struct {
	db *sql.DB
}

// NewMySQLStore creates a new MySQL-backed state store
func NewMySQLStore(db *sql.DB) *mysqlStore {
	return &mysqlStore{
		db: db,
	}
}

// Get returns the value of key
func (s *mysqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT state_value FROM client_state WHERE state_key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state: %w", err)
	}
	return value, true, nil
}

// Set upserts value under key
func (s *mysqlStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO client_state (state_key, state_value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE state_value = VALUES(state_value), updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	return nil
}

// Delete removes key
func (s *mysqlStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM client_state WHERE state_key = ?`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
