package cached

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/trackr-identity/internal/cache"
	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/store/adapters/memory"
)

// countingRepo cuenta lecturas de perfil que llegan al store.
type countingRepo struct {
	*memory.Repo
	profileReads int
}

func (r *countingRepo) GetProfileByID(ctx context.Context, id string) (*repository.Profile, error) {
	r.profileReads++
	return r.Repo.GetProfileByID(ctx, id)
}

func TestWrap_NilCacheReturnsNext(t *testing.T) {
	repo := memory.New()
	assert.Same(t, repo, Wrap(repo, nil, time.Minute))
}

func TestProfileIsCached(t *testing.T) {
	ctx := context.Background()
	base := &countingRepo{Repo: memory.New()}
	cred, _, err := base.CreateCredentialAndProfile(ctx, repository.CreateAccountInput{Email: "x@y.com", FirstName: "X"})
	require.NoError(t, err)

	repo := Wrap(base, cache.NewMemory("", 0), time.Minute)

	for i := 0; i < 3; i++ {
		p, err := repo.GetProfileByID(ctx, cred.ID)
		require.NoError(t, err)
		assert.Equal(t, "X", p.FirstName)
	}
	assert.Equal(t, 1, base.profileReads)
}

func TestCredentialsAreNeverCached(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	cred, _, err := base.CreateCredentialAndProfile(ctx, repository.CreateAccountInput{Email: "x@y.com"})
	require.NoError(t, err)

	repo := Wrap(base, cache.NewMemory("", 0), time.Minute)

	got, err := repo.GetCredentialByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, repo.SetEnabled(ctx, cred.ID, true))

	got, err = repo.GetCredentialByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	assert.True(t, got.Enabled)
}

func TestCorruptEntryFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	base := &countingRepo{Repo: memory.New()}
	cred, _, err := base.CreateCredentialAndProfile(ctx, repository.CreateAccountInput{Email: "x@y.com", LastName: "Y"})
	require.NoError(t, err)

	c := cache.NewMemory("", 0)
	require.NoError(t, c.Set(ctx, profileKeyPrefix+cred.ID, "{not json", 0))

	p, err := Wrap(base, c, time.Minute).GetProfileByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", p.LastName)
	assert.Equal(t, 1, base.profileReads)

	raw, err := c.Get(ctx, profileKeyPrefix+cred.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"LastName":"Y"`)
}

func TestNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("", 0)
	repo := Wrap(memory.New(), c, time.Minute)

	_, err := repo.GetProfileByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = c.Get(ctx, profileKeyPrefix+"missing")
	assert.True(t, cache.IsNotFound(err))
}
