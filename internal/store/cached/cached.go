// Package cached decora un AccountRepository con cache de perfiles.
//
// Solo GetProfileByID pasa por el cache: el resolver nunca muta perfiles,
// así que un perfil cacheado no puede quedar desfasado por este servicio.
// Las credenciales se leen siempre del store porque el flag enabled
// decide el acceso.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/trackr-identity/internal/cache"
	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
)

const profileKeyPrefix = "profile:"

// Repo implementa repository.AccountRepository sobre otro repositorio.
type Repo struct {
	repository.AccountRepository
	cache cache.Client
	ttl   time.Duration
}

// Wrap retorna next decorado. Si c es nil retorna next sin cambios.
func Wrap(next repository.AccountRepository, c cache.Client, ttl time.Duration) repository.AccountRepository {
	if c == nil {
		return next
	}
	return &Repo{AccountRepository: next, cache: c, ttl: ttl}
}

// GetProfileByID lee del cache y, ante un miss o un valor corrupto, del store.
// Errores del cache nunca se propagan.
func (r *Repo) GetProfileByID(ctx context.Context, id string) (*repository.Profile, error) {
	key := profileKeyPrefix + id

	if raw, err := r.cache.Get(ctx, key); err == nil {
		var p repository.Profile
		if json.Unmarshal([]byte(raw), &p) == nil {
			return &p, nil
		}
		_ = r.cache.Delete(ctx, key)
	}

	p, err := r.AccountRepository.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(p); err == nil {
		_ = r.cache.Set(ctx, key, string(b), r.ttl)
	}
	return p, nil
}
