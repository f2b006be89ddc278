//go:build integration

package pg

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/identity"
	"github.com/dropDatabas3/trackr-identity/internal/store"
	migrations "github.com/dropDatabas3/trackr-identity/migrations/postgres"
)

type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	conn      store.AdapterConnection
	repo      repository.AccountRepository
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("trackr"),
		tcpostgres.WithUsername("trackr"),
		tcpostgres.WithPassword("trackr"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	conn, err := store.OpenAdapter(s.ctx, store.AdapterConfig{Name: "postgres", DSN: dsn, MaxOpenConns: 20})
	s.Require().NoError(err)
	s.conn = conn
	s.repo = conn.Accounts()

	mc, ok := conn.(store.MigratableConnection)
	s.Require().True(ok)
	m := store.NewMigrator(migrations.FS, migrations.Dir)
	res, err := m.Run(s.ctx, mc.GetMigrationExecutor())
	s.Require().NoError(err)
	s.NotEmpty(res.Applied)

	res, err = m.Run(s.ctx, mc.GetMigrationExecutor())
	s.Require().NoError(err)
	s.Empty(res.Applied, "second run is a no-op")

	pending, err := m.HasPending(s.ctx, mc.GetMigrationExecutor())
	s.Require().NoError(err)
	s.False(pending)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("terminate container: %v", err)
	}
}

func (s *PostgresSuite) SetupTest() {
	pool := s.conn.(*pgConnection).Pool()
	_, err := pool.Exec(s.ctx, `TRUNCATE credential CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) TestCreateAndLookup() {
	cred, prof, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{
		Email: "max@techdev.de", FirstName: "Max", LastName: "Mustermann",
	})
	s.Require().NoError(err)
	s.NotEmpty(cred.ID)
	s.False(cred.Enabled)
	s.Equal(cred.ID, prof.ID)
	s.WithinDuration(time.Now(), cred.CreatedAt, time.Minute)

	got, err := s.repo.GetCredentialByEmail(s.ctx, "max@techdev.de")
	s.Require().NoError(err)
	s.Equal(cred.ID, got.ID)

	p, err := s.repo.GetProfileByID(s.ctx, cred.ID)
	s.Require().NoError(err)
	s.Equal("Max", p.FirstName)
	s.Equal("employee", p.Role)
}

func (s *PostgresSuite) TestMissingNamesStoredAsEmpty() {
	cred, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "anon@techdev.de"})
	s.Require().NoError(err)

	p, err := s.repo.GetProfileByID(s.ctx, cred.ID)
	s.Require().NoError(err)
	s.Empty(p.FirstName)
	s.Empty(p.LastName)
}

func (s *PostgresSuite) TestNotFound() {
	_, err := s.repo.GetCredentialByEmail(s.ctx, "nobody@y.com")
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repo.GetCredentialByID(s.ctx, "00000000-0000-0000-0000-000000000000")
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.repo.SetEnabled(s.ctx, "00000000-0000-0000-0000-000000000000", true), repository.ErrNotFound)

	// ids que no son UUID
	_, err = s.repo.GetCredentialByID(s.ctx, "not-a-uuid")
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repo.GetProfileByID(s.ctx, "not-a-uuid")
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.repo.SetEnabled(s.ctx, "not-a-uuid", true), repository.ErrNotFound)
}

func (s *PostgresSuite) TestUniqueViolationIsConflict() {
	_, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "x@y.com"})
	s.Require().NoError(err)

	_, _, err = s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "x@y.com"})
	s.ErrorIs(err, repository.ErrConflict)
}

func (s *PostgresSuite) TestProfileInsertFailureRollsBackCredential() {
	pool := s.conn.(*pgConnection).Pool()
	_, err := pool.Exec(s.ctx, `ALTER TABLE profile ADD CONSTRAINT profile_first_name_chk CHECK (first_name IS DISTINCT FROM 'boom')`)
	s.Require().NoError(err)
	defer func() {
		_, err := pool.Exec(s.ctx, `ALTER TABLE profile DROP CONSTRAINT profile_first_name_chk`)
		s.Require().NoError(err)
	}()

	_, _, err = s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "boom@techdev.de", FirstName: "boom"})
	s.Require().Error(err)
	s.NotErrorIs(err, repository.ErrConflict)

	// Nunca queda una credencial sin perfil
	_, err = s.repo.GetCredentialByEmail(s.ctx, "boom@techdev.de")
	s.ErrorIs(err, repository.ErrNotFound)

	var n int
	s.Require().NoError(pool.QueryRow(s.ctx, `SELECT count(*) FROM credential`).Scan(&n))
	s.Zero(n)
}

func (s *PostgresSuite) TestSetEnabledAndList() {
	cred, _, err := s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "a@techdev.de"})
	s.Require().NoError(err)
	_, _, err = s.repo.CreateCredentialAndProfile(s.ctx, repository.CreateAccountInput{Email: "b@other.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.SetEnabled(s.ctx, cred.ID, true))

	enabled := true
	got, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{Enabled: &enabled})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("a@techdev.de", got[0].Email)

	got, err = s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{Search: "OTHER"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("b@other.com", got[0].Email)
}

func (s *PostgresSuite) TestResolverScenarios() {
	prov := identity.NewProvisioner(s.repo, identity.NewAllowlist([]string{"techdev.de"}))
	r := identity.NewResolver(s.repo, prov)

	// A
	_, err := r.Resolve(s.ctx, identity.Attributes{"email": "a@other.com"})
	s.ErrorIs(err, identity.ErrUnknownAccount)

	// B + idempotencia
	for i := 0; i < 2; i++ {
		_, err = r.Resolve(s.ctx, identity.Attributes{"email": "max@techdev.de", "first": "Max", "last": "Mustermann"})
		s.ErrorIs(err, identity.ErrAccountNotUsable)
	}
	all, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{})
	s.Require().NoError(err)
	s.Len(all, 1)

	// C
	s.Require().NoError(s.repo.SetEnabled(s.ctx, all[0].ID, true))
	id, err := r.Resolve(s.ctx, identity.Attributes{"email": "max@techdev.de"})
	s.Require().NoError(err)
	s.Equal("max@techdev.de", id.Username)
	s.Equal("Mustermann", id.LastName)

	// D
	s.Require().NoError(s.repo.SetEnabled(s.ctx, all[0].ID, false))
	_, err = r.Resolve(s.ctx, identity.Attributes{"email": "max@techdev.de"})
	s.ErrorIs(err, identity.ErrAccountNotUsable)
}

func (s *PostgresSuite) TestConcurrentResolversAcrossInstances() {
	// Resolvers separados simulan procesos distintos: solo decide la UNIQUE.
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prov := identity.NewProvisioner(s.repo, identity.NewAllowlist([]string{"techdev.de"}))
			_, errs[i] = identity.NewResolver(s.repo, prov).Resolve(s.ctx, identity.Attributes{"email": "race@techdev.de"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.ErrorIs(err, identity.ErrAccountNotUsable)
	}
	all, err := s.repo.ListCredentials(s.ctx, repository.ListCredentialsFilter{Search: "race@"})
	s.Require().NoError(err)
	s.Len(all, 1)
}
