package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/store/adapters/memory"
)

func TestMaybeProvision(t *testing.T) {
	ctx := context.Background()
	allow := NewAllowlist([]string{"techdev.de"})

	t.Run("rejected has no side effect", func(t *testing.T) {
		repo := memory.New()
		out, err := NewProvisioner(repo, allow).MaybeProvision(ctx, Attributes{"email": "a@other.com"})
		require.NoError(t, err)
		assert.Equal(t, Rejected, out)
		creds, profs := repo.Count()
		assert.Zero(t, creds+profs)
	})

	t.Run("created with custom role", func(t *testing.T) {
		repo := memory.New()
		p := NewProvisioner(repo, allow, WithDefaultRole("contractor"), WithNotifier(nil))

		out, err := p.MaybeProvision(ctx, Attributes{"email": "max@techdev.de", "first": "Max"})
		require.NoError(t, err)
		assert.Equal(t, Created, out)

		cred, err := repo.GetCredentialByEmail(ctx, "max@techdev.de")
		require.NoError(t, err)
		assert.False(t, cred.Enabled)
		prof, err := repo.GetProfileByID(ctx, cred.ID)
		require.NoError(t, err)
		assert.Equal(t, "contractor", prof.Role)
		assert.Equal(t, "Max", prof.FirstName)
	})

	t.Run("conflict is surfaced", func(t *testing.T) {
		repo := memory.New()
		repo.Seed(repository.Credential{Email: "max@techdev.de"}, repository.Profile{})

		out, err := NewProvisioner(repo, allow).MaybeProvision(ctx, Attributes{"email": "max@techdev.de"})
		require.ErrorIs(t, err, repository.ErrConflict)
		assert.Equal(t, Rejected, out)
	})
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "rejected", Rejected.String())
}
