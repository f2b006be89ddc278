// Package noop implementa el adapter no-op para modo sin DB.
package noop

import (
	"context"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/store"
)

func init() {
	store.RegisterAdapter(&noopAdapter{})
}

type noopAdapter struct{}

func (a *noopAdapter) Name() string { return "noop" }

func (a *noopAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return &noopConnection{}, nil
}

type noopConnection struct{}

func (c *noopConnection) Name() string                           { return "noop" }
func (c *noopConnection) Ping(ctx context.Context) error         { return repository.ErrNoDatabase }
func (c *noopConnection) Close() error                           { return nil }
func (c *noopConnection) Accounts() repository.AccountRepository { return &noopAccountRepo{} }

// ─── Repo que retorna ErrNoDatabase ───

type noopAccountRepo struct{}

func (r *noopAccountRepo) GetCredentialByEmail(ctx context.Context, email string) (*repository.Credential, error) {
	return nil, repository.ErrNoDatabase
}
func (r *noopAccountRepo) GetCredentialByID(ctx context.Context, id string) (*repository.Credential, error) {
	return nil, repository.ErrNoDatabase
}
func (r *noopAccountRepo) GetProfileByID(ctx context.Context, id string) (*repository.Profile, error) {
	return nil, repository.ErrNoDatabase
}
func (r *noopAccountRepo) CreateCredentialAndProfile(ctx context.Context, input repository.CreateAccountInput) (*repository.Credential, *repository.Profile, error) {
	return nil, nil, repository.ErrNoDatabase
}
func (r *noopAccountRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return repository.ErrNoDatabase
}
func (r *noopAccountRepo) ListCredentials(ctx context.Context, filter repository.ListCredentialsFilter) ([]repository.Credential, error) {
	return nil, repository.ErrNoDatabase
}
