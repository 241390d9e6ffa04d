// ABOUTME: Profile registrar: merges partial edits into the active identity's profile
// ABOUTME: Session-local for super/system identities, written back to the account for named admins

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ejcents/portfolio-admin/internal/session"
	"github.com/ejcents/portfolio-admin/internal/store"
)

// ErrNotAuthenticated is returned when a profile update is attempted with no
// active identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// Update is a partial profile edit. Nil fields are left unchanged; non-nil
// fields replace the current value, including replacement with an empty
// string.
type Update struct {
	Name   *string
	Email  *string
	Title  *string
	Bio    *string
	Avatar *string
}

// Registrar reads and writes the profile bound to the currently active
// identity.
type Registrar struct {
	accounts store.CredentialStore
	sessions *session.Store
	logger   *slog.Logger
}

// NewRegistrar creates a registrar over the given account store and session
// store.
func NewRegistrar(accounts store.CredentialStore, sessions *session.Store) *Registrar {
	return &Registrar{
		accounts: accounts,
		sessions: sessions,
		logger:   slog.Default().With("component", "profile"),
	}
}

// Apply merges the update into a profile value.
func (u Update) Apply(p store.Profile) store.Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	return p
}

// Update merges the partial edit into the live session's profile. The
// in-memory merge is always synchronous: callers observe the change
// immediately. Only when the active identity is a named admin account is the
// merged profile also written back to the account record; super and system
// identities keep the edit session-local, so it is lost on logout.
func (r *Registrar) Update(ctx context.Context, u Update) error {
	cur := r.sessions.Current()
	if !cur.Authenticated {
		return ErrNotAuthenticated
	}

	merged := u.Apply(cur.Profile)
	cur.Profile = merged
	r.sessions.Set(cur)

	if cur.Role != store.RoleAdmin {
		r.logger.Debug("profile edit kept session-local", "role", cur.Role)
		return nil
	}

	err := r.accounts.UpdateAccountProfile(ctx, cur.IdentityID, merged)
	if errors.Is(err, store.ErrNotFound) {
		// The account vanished underneath an active session. The session
		// keeps the merged profile; there is nowhere durable to put it.
		r.logger.Warn("account missing during profile write-back", "identity_id", cur.IdentityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("writing profile for %q: %w", cur.IdentityID, err)
	}

	r.logger.Debug("updated account profile", "identity_id", cur.IdentityID)
	return nil
}
