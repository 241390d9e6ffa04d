// ABOUTME: Package permission derives capability grants from roles
// ABOUTME: Pure logic, no storage or I/O

// Package permission maps an authenticated role to a capability grant.
//
// Grants are a tagged variant: superadmin and systemadmin always
// receive a full grant, a named admin receives its stored custom set,
// and a named admin whose account no longer exists receives the
// restricted fallback. Derivation is pure; callers pass in whatever
// account record they looked up.
package permission
