// Package store provides persistent storage for the admin core using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - CredentialStore: Admin account registry and the super-secret
//   - SessionRecordStore: The single durable session record
//   - AuditStore: Append-only audit log of auth and reset operations
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Data Models
//
//   - AdminAccount: Named administrator with secret hash, profile,
//     capability set and a stable registry position
//   - Profile: Free-text display profile bound to an identity
//   - CapabilitySet: Fixed 7-flag record gating admin features
//   - SessionRecord: Minimal durable record {authenticated, role, identity
//     id}; profile and permissions are re-derived on restore, never persisted
//   - AuditEntry: Who did what to which resource
//
// # Registry Order
//
// Accounts carry a position column assigned at bootstrap. Lookups that scan
// for a matching secret iterate in position order, so two accounts sharing a
// secret always resolve to the earlier one. This is a documented tie-break,
// not an error.
//
// # Session Record Writes
//
// The session record lives under one fixed key in the auth_state table with
// a version column. Writes are compare-and-swap: a writer that lost a race
// against another process sharing the database gets
// ErrSessionVersionConflict instead of silently clobbering the record.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrCorruptSessionRecord: Stored session record is unparseable; the
//     caller clears it and treats the session as absent
//   - ErrSessionVersionConflict: Lost a session record write race
//
// All methods accept context.Context for cancellation support.
package store
