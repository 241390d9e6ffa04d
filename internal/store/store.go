// ABOUTME: Store interfaces and data types for portfolio-admin persistence
// ABOUTME: Defines AdminAccount, CapabilitySet, SessionRecord and the per-concern store interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrCorruptSessionRecord is returned when the persisted session record
// cannot be parsed or has an invalid shape. Callers are expected to clear
// the record and treat the session as absent.
var ErrCorruptSessionRecord = errors.New("corrupt session record")

// ErrSessionVersionConflict is returned when a session record write loses a
// compare-and-swap race against another writer sharing the same database.
var ErrSessionVersionConflict = errors.New("session record version conflict")

// Role identifies the privilege tier of an authenticated identity.
type Role string

const (
	// RoleAdmin is a named administrator account from the registry.
	RoleAdmin Role = "admin"
	// RoleSuperadmin is the single super identity unlocked by the super-secret.
	RoleSuperadmin Role = "superadmin"
	// RoleSystemadmin is the single system identity unlocked by the fixed
	// system-secret constant.
	RoleSystemadmin Role = "systemadmin"
)

// ValidRoles lists all valid roles.
var ValidRoles = []Role{
	RoleAdmin,
	RoleSuperadmin,
	RoleSystemadmin,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Profile is the display profile bound to an identity. All fields are free
// text; validation is a UI concern.
type Profile struct {
	Name   string
	Email  string
	Title  string
	Bio    string
	Avatar string
}

// CapabilitySet is the fixed record of boolean flags gating admin features.
type CapabilitySet struct {
	CanViewMessages  bool `json:"can_view_messages"`
	CanEditMessages  bool `json:"can_edit_messages"`
	CanViewPortfolio bool `json:"can_view_portfolio"`
	CanEditPortfolio bool `json:"can_edit_portfolio"`
	CanViewAnalytics bool `json:"can_view_analytics"`
	CanEditProfile   bool `json:"can_edit_profile"`
	CanManageAdmins  bool `json:"can_manage_admins"`
}

// FullCapabilities returns the canonical all-true capability set held by the
// super and system identities.
func FullCapabilities() CapabilitySet {
	return CapabilitySet{
		CanViewMessages:  true,
		CanEditMessages:  true,
		CanViewPortfolio: true,
		CanEditPortfolio: true,
		CanViewAnalytics: true,
		CanEditProfile:   true,
		CanManageAdmins:  true,
	}
}

// FallbackCapabilities returns the restricted degrade-safe set used when an
// admin identity references an account record that no longer exists:
// view-only portfolio access plus profile editing, everything else denied.
func FallbackCapabilities() CapabilitySet {
	return CapabilitySet{
		CanViewPortfolio: true,
		CanEditProfile:   true,
	}
}

// AdminAccount is a named administrator account. Accounts are created by
// bootstrap (or reset-to-defaults) and mutated only through profile updates
// and secret resets; deletion belongs to external collaborators.
type AdminAccount struct {
	ID          string
	SecretHash  string // bcrypt hash of the login secret
	Position    int    // registry order; the first-match tie-break key
	Profile     Profile
	Permissions CapabilitySet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionRecord is the minimal durable session record. Profile and
/// permissions are deliberately absent: they are re-derived on restore so
// edits made between sessions are always visible.
type SessionRecord struct {
	Authenticated bool   `json:"authenticated"`
	Role          Role   `json:"role,omitempty"`
	IdentityID    string `json:"identity_id,omitempty"`
}

// CredentialStore persists the admin account registry and the super-secret.
type CredentialStore interface {
	// ReplaceAccounts atomically replaces the whole account set, assigning
	// registry positions in slice order.
	ReplaceAccounts(ctx context.Context, accounts []*AdminAccount) error
	// ListAccounts returns all accounts in registry order.
	ListAccounts(ctx context.Context) ([]*AdminAccount, error)
	GetAccount(ctx context.Context, id string) (*AdminAccount, error)
	UpdateAccountProfile(ctx context.Context, id string, profile Profile) error
	UpdateAccountSecretHash(ctx context.Context, id, secretHash string) error

	// Super-secret. GetSuperSecretHash returns ErrNotFound before bootstrap.
	GetSuperSecretHash(ctx context.Context) (string, error)
	SetSuperSecretHash(ctx context.Context, secretHash string) error
}

// SessionRecordStore persists the single durable session record.
type SessionRecordStore interface {
	// SaveSessionRecord writes the record if the stored version still equals
	// expectedVersion (0 means "no record yet"). Returns the new version, or
	// ErrSessionVersionConflict if another writer won the race.
	SaveSessionRecord(ctx context.Context, rec *SessionRecord, expectedVersion int64) (int64, error)
	// GetSessionRecord returns the record and its version. ErrNotFound when
	// absent, ErrCorruptSessionRecord when present but unparseable.
	GetSessionRecord(ctx context.Context) (*SessionRecord, int64, error)
	// ClearSessionRecord deletes the record. Idempotent.
	ClearSessionRecord(ctx context.Context) error
}
