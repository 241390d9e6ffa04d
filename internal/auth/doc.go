// Package auth is the facade over credential resolution, permission
// derivation, and session persistence.
//
// # Tiered Login
//
// Login checks a submitted secret against three tiers in fixed priority
// order:
//
//  1. The super-secret (current value, possibly reset) — role "superadmin"
//  2. The fixed system-secret constant — role "systemadmin"
//  3. The named admin accounts, in registry order — role "admin"
//
// The ordering is significant: a secret duplicated across tiers always
// resolves to the higher-privilege tier. No match returns false without
// touching the session.
//
// # Capability Derivation
//
// The super and system identities always carry the full capability set;
// this is enforced by the resolver, never read from storage. Named admins
// carry their stored capability set. An admin whose account record is
// missing gets the restricted fallback.
//
// # Restore
//
// On process start, Restore reads the minimal durable record
// {authenticated, role, identity id} and re-derives profile and permissions
// through the same lookup path as login. Nothing cached is trusted, so a
// profile or permission edit made between sessions is visible immediately
// after restart. Corrupt records degrade to logged out.
//
// # Auditing
//
// Every state-changing operation appends an audit entry when an audit store
// is configured. Audit failures are logged and never surface to callers.
package auth
