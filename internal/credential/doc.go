// Package credential holds the registry of verifiable secrets: the named
// admin accounts and the single super-secret.
//
// Secrets are never stored in the clear. Reset operations hash the new
// secret with bcrypt before it reaches storage, and verification compares
// the submitted plaintext against the stored hash. Loading the registry can
// therefore never reveal a secret to the caller.
//
// Lookup by secret scans accounts in registry order and stops at the first
// match, so two accounts sharing a secret always resolve to the earlier
// one. Tier priority across super/system/named accounts is the facade's
// concern, not the registry's.
//
// BootstrapIfAbsent seeds a fresh database with one default account and a
// default super-secret; it is idempotent and safe to call on every start.
package credential
