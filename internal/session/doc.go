// ABOUTME: Package session holds the in-memory session and its durable record
// ABOUTME: One record at a time, committed with versioned writes

// Package session manages the single authenticated session.
//
// The live Session is an explicit in-memory value. Commit persists a
// minimal record (authenticated flag, role, identity id) with a
// compare-and-swap on the record version; profile and permissions are
// never persisted and are re-derived on restore.
package session
