package identity

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	"github.com/dropDatabas3/trackr-identity/internal/metrics"
	"github.com/dropDatabas3/trackr-identity/internal/notify"
	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
)

// Outcome es el resultado de la decisión de provisioning.
type Outcome int

const (
	// Rejected: dominio no reconocido, sin mutación.
	Rejected Outcome = iota
	// Created: se creó Credential (deshabilitada) + Profile.
	Created
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	default:
		return "rejected"
	}
}

// Provisioner decide si un email sin credencial se crea o se rechaza.
type Provisioner struct {
	repo        repository.AccountRepository
	allow       Allowlist
	defaultRole string
	notifier    notify.Notifier
}

// ProvisionerOption configura un Provisioner.
type ProvisionerOption func(*Provisioner)

// WithDefaultRole fija el rol del Profile creado.
func WithDefaultRole(role string) ProvisionerOption {
	return func(p *Provisioner) {
		if role != "" {
			p.defaultRole = role
		}
	}
}

// WithNotifier fija quién recibe el aviso de cuenta pendiente.
func WithNotifier(n notify.Notifier) ProvisionerOption {
	return func(p *Provisioner) {
		if n != nil {
			p.notifier = n
		}
	}
}

// NewProvisioner crea un Provisioner sobre el repo y la allowlist dados.
func NewProvisioner(repo repository.AccountRepository, allow Allowlist, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		repo:        repo,
		allow:       allow,
		defaultRole: "employee",
		notifier:    notify.Noop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaybeProvision asume que el email no tiene credencial.
// Dominio reconocido: crea Credential(enabled=false) + Profile en una unidad atómica.
// Caso contrario no muta nada.
//
// Un repository.ErrConflict del store se retorna envuelto para que el caller
// re-resuelva contra la credencial ya existente.
func (p *Provisioner) MaybeProvision(ctx context.Context, attrs Attributes) (Outcome, error) {
	email := attrs.Email()
	log := logger.From(ctx).With(logger.Component("identity.provisioning"), logger.EmailMasked(email))

	if !p.allow.Recognizes(email) {
		metrics.RecordProvisioning(metrics.ProvisionRejected)
		log.Debug("domain not recognized, no provisioning")
		return Rejected, nil
	}

	cred, prof, err := p.repo.CreateCredentialAndProfile(ctx, repository.CreateAccountInput{
		Email:     email,
		FirstName: attrs.First(),
		LastName:  attrs.Last(),
		Role:      p.defaultRole,
		Enabled:   false,
	})
	if err != nil {
		if repository.IsConflict(err) {
			metrics.RecordProvisioning(metrics.ProvisionConflict)
			log.Info("provisioning lost uniqueness race")
			return Rejected, fmt.Errorf("provision: %w", err)
		}
		metrics.RecordProvisioning(metrics.ProvisionError)
		log.Error("provisioning failed", logger.Err(err))
		return Rejected, fmt.Errorf("provision: %w", err)
	}

	metrics.RecordProvisioning(metrics.ProvisionCreated)
	log.Info("account provisioned disabled, pending approval", logger.CredentialID(cred.ID))

	pending := notify.PendingAccount{
		CredentialID: cred.ID,
		Email:        cred.Email,
		FirstName:    prof.FirstName,
		LastName:     prof.LastName,
		CreatedAt:    cred.CreatedAt,
	}
	if err := p.notifier.AccountPending(ctx, pending); err != nil {
		log.Warn("pending account notification failed", logger.CredentialID(cred.ID), logger.Err(err))
	}

	return Created, nil
}
