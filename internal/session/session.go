// ABOUTME: The single live session and its durable minimal record
// ABOUTME: Exactly one identity is active per Store; the durable record survives restarts

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ejcents/portfolio-admin/internal/store"
)

// Session is the live authentication state. The zero value is the
// unauthenticated default. Exactly one Session is active per Store; it is
// the sole owner of "who is currently authenticated".
type Session struct {
	Authenticated bool
	Role          store.Role
	IdentityID    string
	Profile       store.Profile
	Permissions   *store.CapabilitySet
}

// Store holds the live session and mirrors its minimal record to durable
// storage. Only {authenticated, role, identityID} is persisted; profile and
// permissions are re-derived by the caller on restore, which is what keeps
// later profile or permission edits visible across restarts.
type Store struct {
	records store.SessionRecordStore
	logger  *slog.Logger

	current Session
	version int64 // durable record version last observed, 0 when absent
}

// New creates a session store in the unauthenticated state.
func New(records store.SessionRecordStore) *Store {
	return &Store{
		records: records,
		logger:  slog.Default().With("component", "session"),
	}
}

// Current returns the live session value.
func (s *Store) Current() Session {
	return s.current
}

// Set replaces the live session in memory without touching durable storage.
// Used after restore re-derivation and for session-local profile merges.
func (s *Store) Set(sess Session) {
	s.current = sess
}

// Commit replaces the live session and persists its minimal record. The
// write is compare-and-swap against the version this store last observed;
// a conflicting writer sharing the database surfaces as
// store.ErrSessionVersionConflict and leaves the in-memory session
// untouched.
func (s *Store) Commit(ctx context.Context, sess Session) error {
	rec := &store.SessionRecord{
		Authenticated: sess.Authenticated,
		Role:          sess.Role,
		IdentityID:    sess.IdentityID,
	}

	version, err := s.records.SaveSessionRecord(ctx, rec, s.version)
	if err != nil {
		return fmt.Errorf("persisting session record: %w", err)
	}

	s.current = sess
	s.version = version
	s.logger.Debug("committed session", "role", sess.Role, "identity_id", sess.IdentityID)
	return nil
}

// Restore loads the durable minimal record. The second return value is false
// when no usable record exists: absent records, corrupt records, and records
// for logged-out sessions all come back as (zero, false, nil). Corrupt
// records are cleared so the next start sees a clean slate; corruption never
// surfaces as an error to the caller.
func (s *Store) Restore(ctx context.Context) (store.SessionRecord, bool, error) {
	rec, version, err := s.records.GetSessionRecord(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.current = Session{}
		s.version = 0
		return store.SessionRecord{}, false, nil
	}
	if errors.Is(err, store.ErrCorruptSessionRecord) {
		s.logger.Warn("discarding corrupt session record")
		if clearErr := s.records.ClearSessionRecord(ctx); clearErr != nil {
			return store.SessionRecord{}, false, fmt.Errorf("clearing corrupt session record: %w", clearErr)
		}
		s.current = Session{}
		s.version = 0
		return store.SessionRecord{}, false, nil
	}
	if err != nil {
		return store.SessionRecord{}, false, fmt.Errorf("loading session record: %w", err)
	}

	s.version = version
	if !rec.Authenticated {
		s.current = Session{}
		return store.SessionRecord{}, false, nil
	}

	return *rec, true, nil
}

// Clear deletes the durable record and resets the live session to the
// unauthenticated default.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.records.ClearSessionRecord(ctx); err != nil {
		return fmt.Errorf("clearing session record: %w", err)
	}

	s.current = Session{}
	s.version = 0
	s.logger.Debug("cleared session")
	return nil
}
