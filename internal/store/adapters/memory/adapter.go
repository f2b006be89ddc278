// Package memory implementa un account store en memoria.
// Útil para desarrollo y testing; cada Connect crea un store vacío.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return &memoryConnection{repo: New()}, nil
}

type memoryConnection struct {
	repo *Repo
}

func (c *memoryConnection) Name() string                           { return "memory" }
func (c *memoryConnection) Ping(ctx context.Context) error         { return nil }
func (c *memoryConnection) Close() error                           { return nil }
func (c *memoryConnection) Accounts() repository.AccountRepository { return c.repo }

// Repo implementa repository.AccountRepository con maps protegidos por mutex.
// El índice por email hace cumplir la unicidad igual que la UNIQUE de postgres.
type Repo struct {
	mu          sync.RWMutex
	byEmail     map[string]string // email → id
	credentials map[string]repository.Credential
	profiles    map[string]repository.Profile
	now         func() time.Time
}

// New crea un Repo vacío.
func New() *Repo {
	return &Repo{
		byEmail:     make(map[string]string),
		credentials: make(map[string]repository.Credential),
		profiles:    make(map[string]repository.Profile),
		now:         time.Now,
	}
}

func (r *Repo) GetCredentialByEmail(_ context.Context, email string) (*repository.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := r.credentials[id]
	return &c, nil
}

func (r *Repo) GetCredentialByID(_ context.Context, id string) (*repository.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.credentials[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Repo) GetProfileByID(_ context.Context, id string) (*repository.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Repo) CreateCredentialAndProfile(_ context.Context, input repository.CreateAccountInput) (*repository.Credential, *repository.Profile, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, nil, repository.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[input.Email]; exists {
		return nil, nil, repository.ErrConflict
	}

	role := input.Role
	if role == "" {
		role = "employee"
	}
	now := r.now()
	id := uuid.NewString()

	cred := repository.Credential{ID: id, Email: input.Email, Enabled: input.Enabled, CreatedAt: now}
	prof := repository.Profile{ID: id, FirstName: input.FirstName, LastName: input.LastName, Role: role, CreatedAt: now}

	r.byEmail[input.Email] = id
	r.credentials[id] = cred
	r.profiles[id] = prof

	return &cred, &prof, nil
}

func (r *Repo) SetEnabled(_ context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credentials[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Enabled = enabled
	r.credentials[id] = c
	return nil
}

func (r *Repo) ListCredentials(_ context.Context, filter repository.ListCredentialsFilter) ([]repository.Credential, error) {
	filter = filter.Normalize()

	r.mu.RLock()
	matched := make([]repository.Credential, 0, len(r.credentials))
	for _, c := range r.credentials {
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Email), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Enabled != nil && c.Enabled != *filter.Enabled {
			continue
		}
		matched = append(matched, c)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Email < matched[j].Email
	})

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

// Count retorna la cantidad de credenciales y perfiles guardados.
func (r *Repo) Count() (credentials, profiles int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.credentials), len(r.profiles)
}

// Seed inserta una credencial con su perfil sin pasar por la API pública.
// Pensado para tests y datos de desarrollo.
func (r *Repo) Seed(cred repository.Credential, prof repository.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = r.now()
	}
	prof.ID = cred.ID
	if prof.CreatedAt.IsZero() {
		prof.CreatedAt = cred.CreatedAt
	}

	r.byEmail[cred.Email] = cred.ID
	r.credentials[cred.ID] = cred
	r.profiles[cred.ID] = prof
}
