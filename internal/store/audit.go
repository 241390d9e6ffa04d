// ABOUTME: Audit log entity and store methods for tracking auth and reset operations
// ABOUTME: Records who did what to which resource for compliance and debugging

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents an auditable action.
type AuditAction string

const (
	AuditLogin              AuditAction = "login"
	AuditLoginDenied        AuditAction = "login_denied"
	AuditLogout             AuditAction = "logout"
	AuditUpdateProfile      AuditAction = "update_profile"
	AuditResetAccountSecret AuditAction = "reset_account_secret"
	AuditResetSuperSecret   AuditAction = "reset_super_secret"
	AuditResetAllDefaults   AuditAction = "reset_all_defaults"
)

// ValidAuditActions lists all valid audit actions.
var ValidAuditActions = []AuditAction{
	AuditLogin,
	AuditLoginDenied,
	AuditLogout,
	AuditUpdateProfile,
	AuditResetAccountSecret,
	AuditResetSuperSecret,
	AuditResetAllDefaults,
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string         // UUID v4
	ActorRole  string         // role of the actor, "anonymous" for failed logins
	ActorID    string         // identity id of the actor, empty for super/anonymous
	Action     AuditAction    // what action was performed
	TargetType string         // "session", "account", "registry"
	TargetID   string         // ID of the affected resource
	Timestamp  time.Time      // when it happened
	Detail     map[string]any // additional context
}

// AuditFilter specifies filtering options for listing audit entries.
type AuditFilter struct {
	Since  *time.Time   // entries after this time
	Action *AuditAction // filter by action type
	Limit  int          // max results (default 100, max 1000)
}

// AuditStore defines methods for the append-only audit log.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, e *AuditEntry) error
	ListAuditLog(ctx context.Context, filter AuditFilter) ([]*AuditEntry, error)
}

// Ensure SQLiteStore implements AuditStore.
var _ AuditStore = (*SQLiteStore)(nil)

// AppendAuditLog appends a new entry to the audit log.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	var detailJSON sql.NullString
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
		detailJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO audit_log (audit_id, actor_role, actor_id, action, target_type, target_id, ts, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.ActorRole,
		nullString(e.ActorID),
		e.Action,
		e.TargetType,
		e.TargetID,
		e.Timestamp.UTC().Format(time.RFC3339),
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	s.logger.Debug("appended audit log",
		"id", e.ID,
		"actor", e.ActorRole,
		"action", e.Action,
		"target", e.TargetType+"/"+e.TargetID,
	)
	return nil
}

// normalizeAuditLimit applies default (100) and cap (1000) to audit limit.
func normalizeAuditLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

// ListAuditLog returns audit entries matching the filter, newest first.
func (s *SQLiteStore) ListAuditLog(ctx context.Context, filter AuditFilter) ([]*AuditEntry, error) {
	query := `
		SELECT audit_id, actor_role, actor_id, action, target_type, target_id, ts, detail_json
		FROM audit_log
		WHERE 1=1
	`
	var args []any

	if filter.Since != nil {
		query += " AND ts > ?"
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if filter.Action != nil {
		query += " AND action = ?"
		args = append(args, *filter.Action)
	}

	query += " ORDER BY ts DESC LIMIT ?"
	args = append(args, normalizeAuditLimit(filter.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		var actorID, detailJSON sql.NullString
		var tsStr string

		if err := rows.Scan(
			&e.ID,
			&e.ActorRole,
			&actorID,
			&e.Action,
			&e.TargetType,
			&e.TargetID,
			&tsStr,
			&detailJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		e.ActorID = actorID.String
		if parsed, err := time.Parse(time.RFC3339, tsStr); err == nil {
			e.Timestamp = parsed
		}
		if detailJSON.Valid {
			if err := json.Unmarshal([]byte(detailJSON.String), &e.Detail); err != nil {
				return nil, fmt.Errorf("unmarshaling audit detail: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return entries, nil
}
