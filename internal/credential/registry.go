// ABOUTME: Credential registry: named admin accounts plus the single super-secret
// ABOUTME: Secrets are stored as bcrypt hashes; lookups scan in registry order

package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ejcents/portfolio-admin/internal/store"
)

// ErrEmptySecret is returned by the reset operations when given an empty
// secret. Strength and length rules are a UI concern; non-empty is the only
// check made here.
var ErrEmptySecret = errors.New("secret must not be empty")

// Bootstrap defaults. These are the known initial credentials written when
// no registry exists yet; deployments are expected to rotate them through
// the reset operations.
const (
	DefaultAccountID     = "admin1"
	DefaultAccountSecret = "admin123"
	DefaultSuperSecret   = "superadmin123"
)

// Registry is the source of truth for all verifiable secrets and the
// accounts they unlock.
type Registry struct {
	store  store.CredentialStore
	logger *slog.Logger
}

// NewRegistry creates a registry backed by the given credential store.
func NewRegistry(cs store.CredentialStore) *Registry {
	return &Registry{
		store:  cs,
		logger: slog.Default().With("component", "credential"),
	}
}

// defaultAccounts returns the bootstrap account set. Called once per
// bootstrap so each account gets a fresh hash.
func defaultAccounts() ([]*store.AdminAccount, error) {
	hash, err := hashSecret(DefaultAccountSecret)
	if err != nil {
		return nil, err
	}
	return []*store.AdminAccount{
		{
			ID:         DefaultAccountID,
			SecretHash: hash,
			Profile: store.Profile{
				Name:  "Administrator",
				Title: "Site Administrator",
			},
			Permissions: store.FullCapabilities(),
		},
	}, nil
}

// BootstrapIfAbsent writes the default account set and super-secret if no
// registry has been persisted yet. Idempotent: a bootstrapped registry is
// left untouched.
func (r *Registry) BootstrapIfAbsent(ctx context.Context) error {
	_, err := r.store.GetSuperSecretHash(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking for existing registry: %w", err)
	}

	accounts, err := defaultAccounts()
	if err != nil {
		return fmt.Errorf("building default accounts: %w", err)
	}
	if err := r.store.ReplaceAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("writing default accounts: %w", err)
	}

	superHash, err := hashSecret(DefaultSuperSecret)
	if err != nil {
		return err
	}
	if err := r.store.SetSuperSecretHash(ctx, superHash); err != nil {
		return fmt.Errorf("writing default super secret: %w", err)
	}

	r.logger.Info("bootstrapped credential registry", "accounts", len(accounts))
	return nil
}

// VerifySuperSecret reports whether the submitted secret matches the current
// super-secret. An unbootstrapped registry matches nothing.
func (r *Registry) VerifySuperSecret(ctx context.Context, secret string) (bool, error) {
	hash, err := r.store.GetSuperSecretHash(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading super secret: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil, nil
}

// FindBySecret returns the first account in registry order whose secret
// matches the input. If multiple accounts share a secret, the first in
// storage order wins; that is a documented tie-break, not an error.
// Returns (nil, nil) when no account matches.
func (r *Registry) FindBySecret(ctx context.Context, secret string) (*store.AdminAccount, error) {
	accounts, err := r.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	for _, acct := range accounts {
		if bcrypt.CompareHashAndPassword([]byte(acct.SecretHash), []byte(secret)) == nil {
			return acct, nil
		}
	}
	return nil, nil
}

// FindByID returns the account with the given id, or (nil, nil) when no such
// account exists. A missing account is the caller's degrade path, not an
// error here.
func (r *Registry) FindByID(ctx context.Context, id string) (*store.AdminAccount, error) {
	acct, err := r.store.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading account %q: %w", id, err)
	}
	return acct, nil
}

// ResetAccountSecret replaces a named account's secret.
// Returns ErrEmptySecret for an empty secret and store.ErrNotFound for an
// unknown account id.
func (r *Registry) ResetAccountSecret(ctx context.Context, id, newSecret string) error {
	if newSecret == "" {
		return ErrEmptySecret
	}

	hash, err := hashSecret(newSecret)
	if err != nil {
		return err
	}
	if err := r.store.UpdateAccountSecretHash(ctx, id, hash); err != nil {
		return err
	}

	r.logger.Info("reset account secret", "id", id)
	return nil
}

// ResetSuperSecret replaces the super-secret.
// Returns ErrEmptySecret for an empty secret.
func (r *Registry) ResetSuperSecret(ctx context.Context, newSecret string) error {
	if newSecret == "" {
		return ErrEmptySecret
	}

	hash, err := hashSecret(newSecret)
	if err != nil {
		return err
	}
	if err := r.store.SetSuperSecretHash(ctx, hash); err != nil {
		return err
	}

	r.logger.Info("reset super secret")
	return nil
}

// ResetAllToDefaults restores the bootstrap account set and super-secret,
// discarding any resets and profile edits made since.
func (r *Registry) ResetAllToDefaults(ctx context.Context) error {
	accounts, err := defaultAccounts()
	if err != nil {
		return fmt.Errorf("building default accounts: %w", err)
	}
	if err := r.store.ReplaceAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("restoring default accounts: %w", err)
	}

	superHash, err := hashSecret(DefaultSuperSecret)
	if err != nil {
		return err
	}
	if err := r.store.SetSuperSecretHash(ctx, superHash); err != nil {
		return fmt.Errorf("restoring default super secret: %w", err)
	}

	r.logger.Warn("reset credential registry to defaults")
	return nil
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}
	return string(hash), nil
}
