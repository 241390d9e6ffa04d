// ABOUTME: Pure permission derivation from a resolved identity
// ABOUTME: Grant is a tagged variant so the three resolver outcomes are checked exhaustively

package permission

import (
	"github.com/ejcents/portfolio-admin/internal/store"
)

// GrantKind discriminates the three possible resolver outcomes.
type GrantKind int

const (
	// GrantFull is the unconditional all-capabilities grant held by the
	// super and system identities.
	GrantFull GrantKind = iota
	// GrantCustom carries an account's stored capability set verbatim.
	GrantCustom
	// GrantRestrictedFallback is the degrade-safe minimal grant used when an
	// admin identity references an account record that cannot be found.
	GrantRestrictedFallback
)

// Grant is the resolver's result: one of Full, Custom(set), or
// RestrictedFallback. The zero value is Full, which is never reachable
// through Resolve without a super/system role.
type Grant struct {
	kind   GrantKind
	custom store.CapabilitySet
}

// Full returns the all-capabilities grant.
func Full() Grant {
	return Grant{kind: GrantFull}
}

// Custom returns a grant carrying the given capability set verbatim.
func Custom(set store.CapabilitySet) Grant {
	return Grant{kind: GrantCustom, custom: set}
}

// RestrictedFallback returns the degrade-safe minimal grant.
func RestrictedFallback() Grant {
	return Grant{kind: GrantRestrictedFallback}
}

// Kind returns the grant's discriminant.
func (g Grant) Kind() GrantKind {
	return g.kind
}

// Capabilities materializes the grant into the flag record consumed by the
// session.
func (g Grant) Capabilities() store.CapabilitySet {
	switch g.kind {
	case GrantFull:
		return store.FullCapabilities()
	case GrantCustom:
		return g.custom
	case GrantRestrictedFallback:
		return store.FallbackCapabilities()
	default:
		// Unreachable; the fallback is the safe answer if it ever isn't.
		return store.FallbackCapabilities()
	}
}

// Resolve maps a role and its account record (nil for super/system, or for
// an admin whose record is missing) to a capability grant.
//
// Super and system identities always resolve to the full grant regardless of
// any stored data; this invariant lives here, not in storage. An admin with
// a missing account record gets the restricted fallback, never full access.
func Resolve(role store.Role, account *store.AdminAccount) Grant {
	switch role {
	case store.RoleSuperadmin, store.RoleSystemadmin:
		return Full()
	case store.RoleAdmin:
		if account == nil {
			return RestrictedFallback()
		}
		return Custom(account.Permissions)
	default:
		return RestrictedFallback()
	}
}
