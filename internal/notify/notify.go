// Package notify avisa a los administradores cuando una cuenta queda
// pendiente de aprobación tras un auto-provisioning.
package notify

import (
	"context"
	"time"
)

// PendingAccount describe una cuenta recién creada y deshabilitada.
type PendingAccount struct {
	CredentialID string
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// Notifier envía el aviso de cuenta pendiente.
type Notifier interface {
	AccountPending(ctx context.Context, acc PendingAccount) error
}

// Noop descarta todos los avisos.
type Noop struct{}

func (Noop) AccountPending(context.Context, PendingAccount) error { return nil }
