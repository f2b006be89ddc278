package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/store"
)

type RepoSuite struct {
	suite.Suite
	ctx  context.Context
	repo *Repo
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = New()
}

func (s *RepoSuite) TestCreateAndLookup() {
	cred, prof, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{
		Email: "max@techdev.de", FirstName: "Max", LastName: "Mustermann",
	})
	s.Require().NoError(err)
	s.False(cred.Enabled)
	s.Equal(cred.ID, prof.ID)
	s.Equal("employee", prof.Role)

	got, err := s.repo.GetCredentialByEmail(s.ctx, "max@techdev.de")
	s.Require().NoError(err)
	s.Equal(cred.ID, got.ID)

	byID, err := s.repo.GetCredentialByID(s.ctx, cred.ID)
	s.Require().NoError(err)
	s.Equal("max@techdev.de", byID.Email)

	p, err := s.repo.GetProfileByID(s.ctx, cred.ID)
	s.Require().NoError(err)
	s.Equal("Mustermann", p.LastName)
}

func (s *RepoSuite) TestLookupIsCaseSensitive() {
	_, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "x@y.com"})
	s.Require().NoError(err)

	_, err = s.repo.GetCredentialByEmail(s.ctx, "X@Y.COM")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *RepoSuite) TestNotFound() {
	_, err := s.repo.GetCredentialByEmail(s.ctx, "nobody@y.com")
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repo.GetProfileByID(s.ctx, "nope")
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.repo.SetEnabled(s.ctx, "nope", true), repository.ErrNotFound)
}

func (s *RepoSuite) TestDuplicateEmailConflicts() {
	_, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "x@y.com"})
	s.Require().NoError(err)

	_, _, err = s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "x@y.com"})
	s.ErrorIs(err, repository.ErrConflict)

	creds, profs := s.repo.Count()
	s.Equal(1, creds)
	s.Equal(1, profs)
}

func (s *RepoSuite) TestEmptyEmailRejected() {
	_, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: " "})
	s.ErrorIs(err, repository.ErrInvalidInput)
}

func (s *RepoSuite) TestConcurrentCreateOnlyOneWins() {
	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "race@y.com"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if repository.IsConflict(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(n-1, conflicts)
}

func (s *RepoSuite) TestSetEnabled() {
	cred, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "x@y.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.SetEnabled(s.ctx, cred.ID, true))
	got, err := s.repo.GetCredentialByEmail(s.ctx, "x@y.com")
	s.Require().NoError(err)
	s.True(got.Enabled)
}

func (s *RepoSuite) TestListCredentials() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.repo.Seed(repository.Credential{Email: "a@techdev.de", Enabled: true, CreatedAt: base}, repository.Profile{})
	s.repo.Seed(repository.Credential{Email: "b@techdev.de", CreatedAt: base.Add(time.Hour)}, repository.Profile{})
	s.repo.Seed(repository.Credential{Email: "c@other.com", CreatedAt: base.Add(2 * time.Hour)}, repository.Profile{})

	all, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("c@other.com", all[0].Email, "newest first")

	pending := false
	got, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{Search: "TECHDEV", Enabled: &pending})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("b@techdev.de", got[0].Email)

	page, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("b@techdev.de", page[0].Email)

	empty, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{Offset: 10})
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *RepoSuite) TestAdapterRegistered() {
	conn, err := store.OpenAdapter(s.ctx, store.AdapterConfig{Name: "memory"})
	s.Require().NoError(err)
	s.NoError(conn.Ping(s.ctx))
	s.NotNil(conn.Accounts())
	s.NoError(conn.Close())
}
