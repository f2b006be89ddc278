package identity

import "errors"

var (
	// ErrMalformedAssertion: la aserción no trae el claim email. Bug del caller.
	ErrMalformedAssertion = errors.New("identity: malformed assertion")

	// ErrUnknownAccount: no hay credencial y el dominio no se auto-provisiona.
	ErrUnknownAccount = errors.New("identity: unknown account")

	// ErrAccountNotUsable: la credencial existe (quizás recién creada) pero está deshabilitada.
	ErrAccountNotUsable = errors.New("identity: account not usable")

	// ErrStoreUnavailable: el store falló por algo distinto a una carrera de unicidad.
	// Se envuelve la causa; no se reintenta.
	ErrStoreUnavailable = errors.New("identity: store unavailable")
)

// IsRejection reporta si err es una de las dos fallas que el transporte
// debe presentar igual (no filtrar existencia de cuenta).
func IsRejection(err error) bool {
	return errors.Is(err, ErrUnknownAccount) || errors.Is(err, ErrAccountNotUsable)
}
