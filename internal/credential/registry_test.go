// ABOUTME: Tests for the credential registry using real SQLite
// ABOUTME: Covers bootstrap idempotence, ordered secret lookup, and the reset operations

package credential

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ejcents/portfolio-admin/internal/store"
)

func setupRegistry(t *testing.T) (*Registry, *store.SQLiteStore) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create SQLite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return NewRegistry(s), s
}

func mustHash(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing %q: %v", secret, err)
	}
	return string(hash)
}

func TestBootstrapIfAbsent(t *testing.T) {
	registry, s := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 default account, got %d", len(accounts))
	}
	if accounts[0].ID != DefaultAccountID {
		t.Errorf("default account id = %q, want %q", accounts[0].ID, DefaultAccountID)
	}
	if accounts[0].Permissions != store.FullCapabilities() {
		t.Errorf("default account should have full capabilities: %+v", accounts[0].Permissions)
	}

	// The stored values are hashes that verify against the plaintext.
	if accounts[0].SecretHash == DefaultAccountSecret {
		t.Error("account secret stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(accounts[0].SecretHash), []byte(DefaultAccountSecret)); err != nil {
		t.Errorf("default account hash does not verify: %v", err)
	}

	superHash, err := s.GetSuperSecretHash(ctx)
	if err != nil {
		t.Fatalf("GetSuperSecretHash failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(superHash), []byte(DefaultSuperSecret)); err != nil {
		t.Errorf("super secret hash does not verify: %v", err)
	}
}

func TestBootstrapIfAbsent_Idempotent(t *testing.T) {
	registry, s := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("first bootstrap failed: %v", err)
	}
	firstHash, err := s.GetSuperSecretHash(ctx)
	if err != nil {
		t.Fatalf("GetSuperSecretHash failed: %v", err)
	}

	// Mutate the registry, then bootstrap again: nothing may change.
	if err := registry.ResetAccountSecret(ctx, DefaultAccountID, "rotated"); err != nil {
		t.Fatalf("ResetAccountSecret failed: %v", err)
	}
	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	secondHash, err := s.GetSuperSecretHash(ctx)
	if err != nil {
		t.Fatalf("GetSuperSecretHash failed: %v", err)
	}
	if firstHash != secondHash {
		t.Error("second bootstrap rotated the super secret")
	}

	acct, err := s.GetAccount(ctx, DefaultAccountID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.SecretHash), []byte("rotated")) != nil {
		t.Error("second bootstrap clobbered the rotated account secret")
	}
}

func TestVerifySuperSecret(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	// Unbootstrapped registry matches nothing.
	ok, err := registry.VerifySuperSecret(ctx, DefaultSuperSecret)
	if err != nil {
		t.Fatalf("VerifySuperSecret failed: %v", err)
	}
	if ok {
		t.Error("unbootstrapped registry should not verify anything")
	}

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	ok, err = registry.VerifySuperSecret(ctx, DefaultSuperSecret)
	if err != nil {
		t.Fatalf("VerifySuperSecret failed: %v", err)
	}
	if !ok {
		t.Error("default super secret should verify")
	}

	ok, err = registry.VerifySuperSecret(ctx, "wrong")
	if err != nil {
		t.Fatalf("VerifySuperSecret failed: %v", err)
	}
	if ok {
		t.Error("wrong secret should not verify")
	}
}

func TestFindBySecret_FirstMatchWins(t *testing.T) {
	registry, s := setupRegistry(t)
	ctx := context.Background()

	// Two accounts sharing one secret: the earlier position must win,
	// deterministically across repeated calls.
	shared := mustHash(t, "shared-secret")
	accounts := []*store.AdminAccount{
		{ID: "alpha", SecretHash: shared, Permissions: store.FullCapabilities()},
		{ID: "beta", SecretHash: mustHash(t, "shared-secret"), Permissions: store.FullCapabilities()},
	}
	if err := s.ReplaceAccounts(ctx, accounts); err != nil {
		t.Fatalf("ReplaceAccounts failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		acct, err := registry.FindBySecret(ctx, "shared-secret")
		if err != nil {
			t.Fatalf("FindBySecret failed: %v", err)
		}
		if acct == nil || acct.ID != "alpha" {
			t.Fatalf("attempt %d: expected first account alpha, got %+v", i, acct)
		}
	}
}

func TestFindBySecret_NoMatch(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	acct, err := registry.FindBySecret(ctx, "nope")
	if err != nil {
		t.Fatalf("FindBySecret failed: %v", err)
	}
	if acct != nil {
		t.Errorf("expected nil for unmatched secret, got %+v", acct)
	}
}

func TestFindByID(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	acct, err := registry.FindByID(ctx, DefaultAccountID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if acct == nil {
		t.Fatal("expected default account")
	}

	missing, err := registry.FindByID(ctx, "ghost")
	if err != nil {
		t.Fatalf("FindByID (missing) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing id, got %+v", missing)
	}
}

func TestResetAccountSecret(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	if err := registry.ResetAccountSecret(ctx, DefaultAccountID, ""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}
	if err := registry.ResetAccountSecret(ctx, "ghost", "whatever"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := registry.ResetAccountSecret(ctx, DefaultAccountID, "fresh-secret"); err != nil {
		t.Fatalf("ResetAccountSecret failed: %v", err)
	}

	acct, err := registry.FindBySecret(ctx, "fresh-secret")
	if err != nil {
		t.Fatalf("FindBySecret failed: %v", err)
	}
	if acct == nil || acct.ID != DefaultAccountID {
		t.Errorf("new secret should resolve the account, got %+v", acct)
	}

	old, err := registry.FindBySecret(ctx, DefaultAccountSecret)
	if err != nil {
		t.Fatalf("FindBySecret failed: %v", err)
	}
	if old != nil {
		t.Error("old secret should no longer resolve")
	}
}

func TestResetSuperSecret(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	if err := registry.ResetSuperSecret(ctx, ""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}

	if err := registry.ResetSuperSecret(ctx, "new-super"); err != nil {
		t.Fatalf("ResetSuperSecret failed: %v", err)
	}

	ok, err := registry.VerifySuperSecret(ctx, "new-super")
	if err != nil {
		t.Fatalf("VerifySuperSecret failed: %v", err)
	}
	if !ok {
		t.Error("new super secret should verify")
	}

	ok, err = registry.VerifySuperSecret(ctx, DefaultSuperSecret)
	if err != nil {
		t.Fatalf("VerifySuperSecret failed: %v", err)
	}
	if ok {
		t.Error("old super secret should no longer verify")
	}
}

func TestResetAllToDefaults(t *testing.T) {
	registry, s := setupRegistry(t)
	ctx := context.Background()

	if err := registry.BootstrapIfAbsent(ctx); err != nil {
		t.Fatalf("BootstrapIfAbsent failed: %v", err)
	}

	// Drift the registry away from defaults.
	if err := registry.ResetSuperSecret(ctx, "drifted"); err != nil {
		t.Fatalf("ResetSuperSecret failed: %v", err)
	}
	if err := registry.ResetAccountSecret(ctx, DefaultAccountID, "drifted-too"); err != nil {
		t.Fatalf("ResetAccountSecret failed: %v", err)
	}

	if err := registry.ResetAllToDefaults(ctx); err != nil {
		t.Fatalf("ResetAllToDefaults failed: %v", err)
	}

	ok, err := registry.VerifySuperSecret(ctx, DefaultSuperSecret)
	if err != nil {
		t.Fatalf("VerifySuperSecret failed: %v", err)
	}
	if !ok {
		t.Error("defaults should be restored for the super secret")
	}

	acct, err := registry.FindBySecret(ctx, DefaultAccountSecret)
	if err != nil {
		t.Fatalf("FindBySecret failed: %v", err)
	}
	if acct == nil || acct.ID != DefaultAccountID {
		t.Errorf("default account secret should resolve again, got %+v", acct)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected the default account set, got %d accounts", len(accounts))
	}
}
