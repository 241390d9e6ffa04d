// ABOUTME: Durable session record persistence with compare-and-swap writes
// ABOUTME: The record is a JSON value under one fixed auth_state key

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Ensure SQLiteStore implements SessionRecordStore.
var _ SessionRecordStore = (*SQLiteStore)(nil)

// SaveSessionRecord writes the session record if the stored version still
// equals expectedVersion. An expectedVersion of 0 means no record is
// expected to exist yet. Returns the new version on success, or
// ErrSessionVersionConflict when another writer sharing the database got
// there first.
func (s *SQLiteStore) SaveSessionRecord(ctx context.Context, rec *SessionRecord, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshaling session record: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if expectedVersion == 0 {
		// Insert only succeeds if no record exists.
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO auth_state (key, value, version, updated_at)
			SELECT ?, ?, 1, ?
			WHERE NOT EXISTS (SELECT 1 FROM auth_state WHERE key = ?)
		`, stateKeySessionRecord, string(data), now, stateKeySessionRecord)
		if err != nil {
			return 0, fmt.Errorf("inserting session record: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("getting rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return 0, ErrSessionVersionConflict
		}
		s.logger.Debug("wrote session record", "version", 1)
		return 1, nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE auth_state
		SET value = ?, version = version + 1, updated_at = ?
		WHERE key = ? AND version = ?
	`, string(data), now, stateKeySessionRecord, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("updating session record: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, ErrSessionVersionConflict
	}

	newVersion := expectedVersion + 1
	s.logger.Debug("wrote session record", "version", newVersion)
	return newVersion, nil
}

// GetSessionRecord returns the durable session record and its version.
// Returns ErrNotFound when absent, and ErrCorruptSessionRecord when the
// stored value can't be parsed or names an unknown role.
func (s *SQLiteStore) GetSessionRecord(ctx context.Context) (*SessionRecord, int64, error) {
	var value string
	var version int64
	err := s.db.QueryRowContext(ctx,
		"SELECT value, version FROM auth_state WHERE key = ?", stateKeySessionRecord,
	).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("querying session record: %w", err)
	}

	var rec SessionRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		s.logger.Warn("session record is unparseable", "error", err)
		return nil, version, ErrCorruptSessionRecord
	}
	if rec.Authenticated && !rec.Role.Valid() {
		s.logger.Warn("session record has invalid role", "role", rec.Role)
		return nil, version, ErrCorruptSessionRecord
	}

	return &rec, version, nil
}

// ClearSessionRecord deletes the durable session record. Idempotent.
func (s *SQLiteStore) ClearSessionRecord(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM auth_state WHERE key = ?", stateKeySessionRecord,
	)
	if err != nil {
		return fmt.Errorf("deleting session record: %w", err)
	}

	s.logger.Debug("cleared session record")
	return nil
}

// PutRawSessionRecord writes an arbitrary string under the session record
// key, bypassing JSON encoding. Intended for tests exercising corrupt-state
// recovery.
func (s *SQLiteStore) PutRawSessionRecord(ctx context.Context, raw string) error {
	query := `
		INSERT INTO auth_state (key, value, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = version + 1, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		stateKeySessionRecord,
		raw,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing raw session record: %w", err)
	}
	return nil
}
