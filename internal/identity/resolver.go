package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/metrics"
	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
)

// ResolvedIdentity es la vista de cuenta que recibe el caller en un login exitoso.
type ResolvedIdentity struct {
	CredentialID string `json:"credential_id"`
	Username     string `json:"username"`
	Enabled      bool   `json:"enabled"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Resolver mapea Attributes a una credencial habilitada.
// No guarda estado mutable: la concurrencia entre logins la resuelve
// la UNIQUE de email del store.
type Resolver struct {
	repo        repository.AccountRepository
	provisioner *Provisioner
}

// NewResolver crea un Resolver. provisioner puede ser nil: en ese caso
// ningún email desconocido se auto-provisiona.
func NewResolver(repo repository.AccountRepository, provisioner *Provisioner) *Resolver {
	if provisioner == nil {
		provisioner = NewProvisioner(repo, NewAllowlist(nil))
	}
	return &Resolver{repo: repo, provisioner: provisioner}
}

// Resolve resuelve la aserción. Solo retorna nil error para una credencial habilitada.
func (r *Resolver) Resolve(ctx context.Context, attrs Attributes) (id ResolvedIdentity, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordResolution(outcomeLabel(err), time.Since(start))
	}()

	email := attrs.Email()
	if email == "" {
		return ResolvedIdentity{}, ErrMalformedAssertion
	}

	log := logger.From(ctx).With(logger.Component("identity"), logger.EmailMasked(email))

	cred, err := r.repo.GetCredentialByEmail(ctx, email)
	switch {
	case err == nil:
		return r.fromCredential(ctx, log, cred)
	case repository.IsNotFound(err):
		return r.provision(ctx, log, email, attrs)
	case repository.IsNoDatabase(err):
		log.Error("credential lookup failed, no database configured")
		return ResolvedIdentity{}, storeUnavailable(err)
	default:
		log.Error("credential lookup failed", logger.Err(err))
		return ResolvedIdentity{}, storeUnavailable(err)
	}
}

// provision corre la decisión de provisioning. Un primer login nunca tiene
// éxito en la misma llamada; solo el re-lookup tras un conflicto puede
// encontrar una credencial ya habilitada.
func (r *Resolver) provision(ctx context.Context, log *zap.Logger, email string, attrs Attributes) (ResolvedIdentity, error) {
	outcome, err := r.provisioner.MaybeProvision(ctx, attrs)
	if err != nil {
		if repository.IsConflict(err) {
			return r.relookup(ctx, log, email)
		}
		return ResolvedIdentity{}, storeUnavailable(err)
	}

	if outcome == Created {
		return ResolvedIdentity{}, ErrAccountNotUsable
	}
	log.Info("login rejected, unknown account")
	return ResolvedIdentity{}, ErrUnknownAccount
}

// relookup resuelve una única vez más contra la credencial que ganó la
// carrera de unicidad.
func (r *Resolver) relookup(ctx context.Context, log *zap.Logger, email string) (ResolvedIdentity, error) {
	cred, err := r.repo.GetCredentialByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Error("credential missing after uniqueness conflict")
			return ResolvedIdentity{}, storeUnavailable(fmt.Errorf("credential not found after conflict: %w", err))
		}
		return ResolvedIdentity{}, storeUnavailable(err)
	}
	return r.fromCredential(ctx, log, cred)
}

func (r *Resolver) fromCredential(ctx context.Context, log *zap.Logger, cred *repository.Credential) (ResolvedIdentity, error) {
	if !cred.Enabled {
		log.Info("login rejected, account disabled", logger.CredentialID(cred.ID))
		return ResolvedIdentity{}, ErrAccountNotUsable
	}

	id := ResolvedIdentity{
		CredentialID: cred.ID,
		Username:     cred.Email,
		Enabled:      true,
	}

	// Best effort: un perfil faltante no convierte un éxito en falla.
	prof, err := r.repo.GetProfileByID(ctx, cred.ID)
	switch {
	case err == nil:
		id.FirstName, id.LastName, id.Role = prof.FirstName, prof.LastName, prof.Role
	case repository.IsNotFound(err):
		log.Warn("enabled credential without profile", logger.CredentialID(cred.ID))
	default:
		log.Warn("profile lookup failed", logger.CredentialID(cred.ID), logger.Err(err))
	}

	log.Debug("identity resolved", logger.CredentialID(cred.ID))
	return id, nil
}

func storeUnavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, cause)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResolveSuccess
	case errors.Is(err, ErrMalformedAssertion):
		return metrics.ResolveMalformed
	case errors.Is(err, ErrUnknownAccount):
		return metrics.ResolveUnknown
	case errors.Is(err, ErrAccountNotUsable):
		return metrics.ResolveNotUsable
	default:
		return metrics.ResolveStoreError
	}
}
