// ABOUTME: Shared test helper and basic store initialization tests
// ABOUTME: All store tests run against real SQLite in a temp directory

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestNewSQLiteStore_CreatesParentDirs(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "deeper", "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
}

func TestRoleValid(t *testing.T) {
	for _, r := range ValidRoles {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}

	if Role("owner").Valid() {
		t.Error("unknown role should not be valid")
	}
	if Role("").Valid() {
		t.Error("empty role should not be valid")
	}
}

func TestCapabilityConstructors(t *testing.T) {
	full := FullCapabilities()
	if !full.CanViewMessages || !full.CanEditMessages || !full.CanViewPortfolio ||
		!full.CanEditPortfolio || !full.CanViewAnalytics || !full.CanEditProfile ||
		!full.CanManageAdmins {
		t.Errorf("full capabilities should have all flags set: %+v", full)
	}

	fallback := FallbackCapabilities()
	if !fallback.CanViewPortfolio {
		t.Error("fallback should allow viewing the portfolio")
	}
	if !fallback.CanEditProfile {
		t.Error("fallback should allow editing the profile")
	}
	if fallback.CanManageAdmins {
		t.Error("fallback must never allow managing admins")
	}
	if fallback.CanEditPortfolio || fallback.CanViewMessages || fallback.CanEditMessages || fallback.CanViewAnalytics {
		t.Errorf("fallback should deny everything else: %+v", fallback)
	}
}
