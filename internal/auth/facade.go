// ABOUTME: Auth facade orchestrating tiered login, logout, profile edits and secret resets
// ABOUTME: The only entry point consumed by the UI layer; owns restore-on-init re-derivation

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/ejcents/portfolio-admin/internal/credential"
	"github.com/ejcents/portfolio-admin/internal/permission"
	"github.com/ejcents/portfolio-admin/internal/profile"
	"github.com/ejcents/portfolio-admin/internal/session"
	"github.com/ejcents/portfolio-admin/internal/store"
)

// systemSecret is the fixed secret unlocking the system identity. It is an
// in-code literal, not configurable through any exposed operation.
const systemSecret = "systemadmin123"

// SystemIdentityID is the identity id recorded for the system identity.
const SystemIdentityID = "systemadmin"

// Default profiles for the super and system identities. They are not
// accounts in the registry; edits to these profiles stay session-local.
func defaultSuperProfile() store.Profile {
	return store.Profile{
		Name:  "Super Admin",
		Title: "Site Owner",
	}
}

func defaultSystemProfile() store.Profile {
	return store.Profile{
		Name:  "System Admin",
		Title: "System Maintenance",
	}
}

// Facade orchestrates the credential registry, permission resolver, session
// store and profile registrar. Login/Logout are the only transitions between
// the logged-out and logged-in states.
type Facade struct {
	registry *credential.Registry
	sessions *session.Store
	profiles *profile.Registrar
	audit    store.AuditStore // optional; nil disables auditing
	logger   *slog.Logger
}

// NewFacade creates the facade. The audit store may be nil.
func NewFacade(registry *credential.Registry, sessions *session.Store, profiles *profile.Registrar, audit store.AuditStore) *Facade {
	return &Facade{
		registry: registry,
		sessions: sessions,
		profiles: profiles,
		audit:    audit,
		logger:   slog.Default().With("component", "auth"),
	}
}

// Session returns the current session value: the read-only observable state
// consumed by the UI layer.
func (f *Facade) Session() session.Session {
	return f.sessions.Current()
}

// resolvedIdentity is the outcome of a tier scan.
type resolvedIdentity struct {
	role    store.Role
	id      string
	profile store.Profile
	grant   permission.Grant
}

// resolveSecret scans the three tiers in fixed priority order: the
// super-secret, then the system-secret constant, then the named admin
// accounts in registry order. Returns nil when no tier matches.
func (f *Facade) resolveSecret(ctx context.Context, secret string) (*resolvedIdentity, error) {
	isSuper, err := f.registry.VerifySuperSecret(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("checking super secret: %w", err)
	}
	if isSuper {
		return &resolvedIdentity{
			role:    store.RoleSuperadmin,
			profile: defaultSuperProfile(),
			grant:   permission.Resolve(store.RoleSuperadmin, nil),
		}, nil
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(systemSecret)) == 1 {
		return &resolvedIdentity{
			role:    store.RoleSystemadmin,
			id:      SystemIdentityID,
			profile: defaultSystemProfile(),
			grant:   permission.Resolve(store.RoleSystemadmin, nil),
		}, nil
	}

	account, err := f.registry.FindBySecret(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("resolving account secret: %w", err)
	}
	if account != nil {
		return &resolvedIdentity{
			role:    store.RoleAdmin,
			id:      account.ID,
			profile: account.Profile,
			grant:   permission.Resolve(store.RoleAdmin, account),
		}, nil
	}

	return nil, nil
}

// Login resolves the submitted secret and, on a match, commits the full
// session. A secret deliberately duplicated across tiers always resolves to
// the higher-privilege tier.
//
// Returns (false, nil) when no tier matches; the session is left untouched.
// Login never partially mutates state on failure.
func (f *Facade) Login(ctx context.Context, secret string) (bool, error) {
	identity, err := f.resolveSecret(ctx, secret)
	if err != nil {
		return false, err
	}
	if identity == nil {
		f.logger.Info("login denied: no matching secret")
		f.recordAudit(ctx, &store.AuditEntry{
			ActorRole:  "anonymous",
			Action:     store.AuditLoginDenied,
			TargetType: "session",
			TargetID:   "-",
		})
		return false, nil
	}

	if err := f.commit(ctx, identity.role, identity.id, identity.profile, identity.grant); err != nil {
		return false, err
	}
	return true, nil
}

// CheckSecret reports which tier a secret would resolve to without touching
// the session or writing anything. Operational tooling only; the returned
// identity id is empty for the super tier.
func (f *Facade) CheckSecret(ctx context.Context, secret string) (store.Role, string, bool, error) {
	identity, err := f.resolveSecret(ctx, secret)
	if err != nil {
		return "", "", false, err
	}
	if identity == nil {
		return "", "", false, nil
	}
	return identity.role, identity.id, true, nil
}

// commit builds the full session for a resolved identity and persists it.
func (f *Facade) commit(ctx context.Context, role store.Role, identityID string, prof store.Profile, grant permission.Grant) error {
	caps := grant.Capabilities()
	sess := session.Session{
		Authenticated: true,
		Role:          role,
		IdentityID:    identityID,
		Profile:       prof,
		Permissions:   &caps,
	}

	if err := f.sessions.Commit(ctx, sess); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}

	f.logger.Info("login", "role", role, "identity_id", identityID)
	f.recordAudit(ctx, &store.AuditEntry{
		ActorRole:  string(role),
		ActorID:    identityID,
		Action:     store.AuditLogin,
		TargetType: "session",
		TargetID:   auditTarget(role, identityID),
	})
	return nil
}

// Logout clears the session. A no-op when already logged out.
func (f *Facade) Logout(ctx context.Context) error {
	cur := f.sessions.Current()

	if err := f.sessions.Clear(ctx); err != nil {
		return err
	}

	if cur.Authenticated {
		f.logger.Info("logout", "role", cur.Role, "identity_id", cur.IdentityID)
		f.recordAudit(ctx, &store.AuditEntry{
			ActorRole:  string(cur.Role),
			ActorID:    cur.IdentityID,
			Action:     store.AuditLogout,
			TargetType: "session",
			TargetID:   auditTarget(cur.Role, cur.IdentityID),
		})
	}
	return nil
}

// UpdateProfile merges a partial profile edit into the active identity.
func (f *Facade) UpdateProfile(ctx context.Context, u profile.Update) error {
	cur := f.sessions.Current()
	if err := f.profiles.Update(ctx, u); err != nil {
		return err
	}

	f.recordAudit(ctx, &store.AuditEntry{
		ActorRole:  string(cur.Role),
		ActorID:    cur.IdentityID,
		Action:     store.AuditUpdateProfile,
		TargetType: "account",
		TargetID:   auditTarget(cur.Role, cur.IdentityID),
	})
	return nil
}

// ResetAccountSecret replaces a named account's secret.
func (f *Facade) ResetAccountSecret(ctx context.Context, id, newSecret string) error {
	if err := f.registry.ResetAccountSecret(ctx, id, newSecret); err != nil {
		return err
	}
	f.recordActorAudit(ctx, store.AuditResetAccountSecret, "account", id)
	return nil
}

// ResetSuperSecret replaces the super-secret.
func (f *Facade) ResetSuperSecret(ctx context.Context, newSecret string) error {
	if err := f.registry.ResetSuperSecret(ctx, newSecret); err != nil {
		return err
	}
	f.recordActorAudit(ctx, store.AuditResetSuperSecret, "registry", "super_secret")
	return nil
}

// ResetAllToDefaults restores the bootstrap credential set.
func (f *Facade) ResetAllToDefaults(ctx context.Context) error {
	if err := f.registry.ResetAllToDefaults(ctx); err != nil {
		return err
	}
	f.recordActorAudit(ctx, store.AuditResetAllDefaults, "registry", "all")
	return nil
}

// Restore reconstructs the session from the durable minimal record on
// process start. Profile and permissions are re-derived through the same
// role-specific path as login rather than replayed from a cache, so edits
// made between sessions are reflected immediately. A corrupt record
// degrades to logged out; a missing account record degrades to the
// restricted fallback, never to full access.
func (f *Facade) Restore(ctx context.Context) error {
	rec, ok, err := f.sessions.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restoring session record: %w", err)
	}
	if !ok {
		f.logger.Debug("no session to restore")
		return nil
	}

	var prof store.Profile
	var grant permission.Grant

	switch rec.Role {
	case store.RoleSuperadmin:
		prof = defaultSuperProfile()
		grant = permission.Resolve(store.RoleSuperadmin, nil)
	case store.RoleSystemadmin:
		prof = defaultSystemProfile()
		grant = permission.Resolve(store.RoleSystemadmin, nil)
	case store.RoleAdmin:
		account, err := f.registry.FindByID(ctx, rec.IdentityID)
		if err != nil {
			return fmt.Errorf("re-deriving restored session: %w", err)
		}
		if account == nil {
			f.logger.Warn("restored identity has no account record", "identity_id", rec.IdentityID)
		} else {
			prof = account.Profile
		}
		grant = permission.Resolve(store.RoleAdmin, account)
	}

	caps := grant.Capabilities()
	f.sessions.Set(session.Session{
		Authenticated: true,
		Role:          rec.Role,
		IdentityID:    rec.IdentityID,
		Profile:       prof,
		Permissions:   &caps,
	})

	f.logger.Info("restored session", "role", rec.Role, "identity_id", rec.IdentityID)
	return nil
}

// recordActorAudit records an audit entry attributed to the current session.
func (f *Facade) recordActorAudit(ctx context.Context, action store.AuditAction, targetType, targetID string) {
	cur := f.sessions.Current()
	actorRole := "anonymous"
	if cur.Authenticated {
		actorRole = string(cur.Role)
	}
	f.recordAudit(ctx, &store.AuditEntry{
		ActorRole:  actorRole,
		ActorID:    cur.IdentityID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	})
}

// recordAudit appends an audit entry. Audit failures are logged and
// swallowed: auditing never blocks an auth operation.
func (f *Facade) recordAudit(ctx context.Context, e *store.AuditEntry) {
	if f.audit == nil {
		return
	}
	if err := f.audit.AppendAuditLog(ctx, e); err != nil {
		f.logger.Error("appending audit entry", "action", e.Action, "error", err)
	}
}

// auditTarget names the session target for an identity.
func auditTarget(role store.Role, identityID string) string {
	if identityID != "" {
		return identityID
	}
	return string(role)
}
