// ABOUTME: Package profile applies partial profile updates to the live session
// ABOUTME: Named-admin edits are written back to the account record

// Package profile merges partial profile updates into the current
// session. Edits by a named admin are also written through to the
// stored account so they survive logout; superadmin and systemadmin
// edits stay session-local and are discarded on logout.
package profile
