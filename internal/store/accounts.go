// ABOUTME: Admin account registry persistence on SQLiteStore
// ABOUTME: Registry order is the position column; first-match lookups depend on it

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Ensure SQLiteStore implements CredentialStore.
var _ CredentialStore = (*SQLiteStore)(nil)

// ReplaceAccounts atomically replaces the whole account set. Positions are
// assigned from slice order, which is what makes first-match lookups
// deterministic across restarts.
func (s *SQLiteStore) ReplaceAccounts(ctx context.Context, accounts []*AdminAccount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM admin_accounts"); err != nil {
		return fmt.Errorf("deleting accounts: %w", err)
	}

	query := `
		INSERT INTO admin_accounts (id, secret_hash, position, name, email, title, bio, avatar, permissions_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	for i, acct := range accounts {
		acct.Position = i
		if acct.CreatedAt.IsZero() {
			acct.CreatedAt = now
		}
		acct.UpdatedAt = now

		permsJSON, err := json.Marshal(acct.Permissions)
		if err != nil {
			return fmt.Errorf("marshaling permissions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query,
			acct.ID,
			acct.SecretHash,
			acct.Position,
			acct.Profile.Name,
			acct.Profile.Email,
			acct.Profile.Title,
			acct.Profile.Bio,
			acct.Profile.Avatar,
			string(permsJSON),
			acct.CreatedAt.Format(time.RFC3339),
			acct.UpdatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting account %q: %w", acct.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing account replacement: %w", err)
	}

	s.logger.Info("replaced admin accounts", "count", len(accounts))
	return nil
}

// ListAccounts returns all accounts in registry order.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]*AdminAccount, error) {
	query := `
		SELECT id, secret_hash, position, name, email, title, bio, avatar, permissions_json, created_at, updated_at
		FROM admin_accounts
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []*AdminAccount
	for rows.Next() {
		acct, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

// GetAccount retrieves an account by ID. Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*AdminAccount, error) {
	query := `
		SELECT id, secret_hash, position, name, email, title, bio, avatar, permissions_json, created_at, updated_at
		FROM admin_accounts
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	acct, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// UpdateAccountProfile writes a new profile for an account.
// Returns ErrNotFound if the account doesn't exist.
func (s *SQLiteStore) UpdateAccountProfile(ctx context.Context, id string, profile Profile) error {
	query := `
		UPDATE admin_accounts
		SET name = ?, email = ?, title = ?, bio = ?, avatar = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		profile.Name,
		profile.Email,
		profile.Title,
		profile.Bio,
		profile.Avatar,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating account profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated account profile", "id", id)
	return nil
}

// UpdateAccountSecretHash replaces an account's secret hash.
// Returns ErrNotFound if the account doesn't exist.
func (s *SQLiteStore) UpdateAccountSecretHash(ctx context.Context, id, secretHash string) error {
	query := `UPDATE admin_accounts SET secret_hash = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		secretHash,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating account secret: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("updated account secret", "id", id)
	return nil
}

// GetSuperSecretHash returns the stored super-secret hash.
// Returns ErrNotFound before the registry has been bootstrapped.
func (s *SQLiteStore) GetSuperSecretHash(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM auth_state WHERE key = ?", stateKeySuperSecret,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying super secret: %w", err)
	}
	return value, nil
}

// SetSuperSecretHash writes the super-secret hash, creating the row if needed.
func (s *SQLiteStore) SetSuperSecretHash(ctx context.Context, secretHash string) error {
	query := `
		INSERT INTO auth_state (key, value, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = version + 1, updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		stateKeySuperSecret,
		secretHash,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing super secret: %w", err)
	}

	s.logger.Info("updated super secret")
	return nil
}

// scanAccount reads one admin_accounts row via the given scan function.
func scanAccount(scan func(...any) error) (*AdminAccount, error) {
	var acct AdminAccount
	var permsJSON, createdAt, updatedAt string

	err := scan(
		&acct.ID,
		&acct.SecretHash,
		&acct.Position,
		&acct.Profile.Name,
		&acct.Profile.Email,
		&acct.Profile.Title,
		&acct.Profile.Bio,
		&acct.Profile.Avatar,
		&permsJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	if err := json.Unmarshal([]byte(permsJSON), &acct.Permissions); err != nil {
		return nil, fmt.Errorf("unmarshaling permissions for %q: %w", acct.ID, err)
	}

	if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
		acct.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		acct.UpdatedAt = parsed
	}

	return &acct, nil
}
