package repository

import (
	"context"
	"time"
)

// Credential representa una identidad capaz de hacer login.
// El email es la clave única y se compara tal cual fue guardado.
type Credential struct {
	ID        string
	Email     string
	Enabled   bool
	CreatedAt time.Time
}

// Profile representa a la persona vinculada a una Credential.
// Comparte el ID con su Credential durante toda su vida.
type Profile struct {
	ID        string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
}

// CreateAccountInput contiene los datos para crear Credential + Profile.
type CreateAccountInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
	// Enabled es false para cuentas auto-provisionadas.
	Enabled bool
}

// ListCredentialsFilter opciones para listar credenciales.
type ListCredentialsFilter struct {
	Limit  int    // Default 50, max 200
	Offset int    // Default 0
	Search string // Opcional: búsqueda por email
	// Enabled filtra por estado si no es nil.
	Enabled *bool
}

// Normalize aplica defaults y límites del filtro.
func (f ListCredentialsFilter) Normalize() ListCredentialsFilter {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// AccountRepository define operaciones sobre credenciales y perfiles.
type AccountRepository interface {
	// GetCredentialByEmail busca una credencial por email exacto.
	// Retorna ErrNotFound si no existe.
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)

	// GetCredentialByID busca una credencial por ID.
	// Retorna ErrNotFound si no existe.
	GetCredentialByID(ctx context.Context, id string) (*Credential, error)

	// GetProfileByID busca el perfil vinculado a una credencial.
	// Retorna ErrNotFound si no existe.
	GetProfileByID(ctx context.Context, id string) (*Profile, error)

	// CreateCredentialAndProfile crea ambos registros en una única transacción.
	// Retorna ErrConflict si el email ya existe; en ese caso no se persiste nada.
	CreateCredentialAndProfile(ctx context.Context, input CreateAccountInput) (*Credential, *Profile, error)

	// SetEnabled habilita o deshabilita una credencial (operación administrativa).
	// Retorna ErrNotFound si no existe.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// ListCredentials lista credenciales con paginación.
	ListCredentials(ctx context.Context, filter ListCredentialsFilter) ([]Credential, error)
}
