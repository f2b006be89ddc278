package identity

import (
	"strings"
)

// Claims reconocidos en la aserción.
const (
	ClaimEmail = "email"
	ClaimFirst = "first"
	ClaimLast  = "last"
)

// Attributes es el bag de claims de un intento de login. No se persiste.
type Attributes map[string]string

// Email retorna el claim email sin espacios alrededor. El case no se toca:
// el store compara emails tal cual fueron guardados.
func (a Attributes) Email() string {
	return strings.TrimSpace(a[ClaimEmail])
}

// First retorna el nombre (puede ser vacío).
func (a Attributes) First() string {
	return strings.TrimSpace(a[ClaimFirst])
}

// Last retorna el apellido (puede ser vacío).
func (a Attributes) Last() string {
	return strings.TrimSpace(a[ClaimLast])
}

// AttributesFromClaims adapta claims genéricos (ej: JSON decodificado) al bag.
// Solo se conservan valores string; el resto se descarta.
// Acepta given_name/family_name como alias de first/last.
func AttributesFromClaims(claims map[string]any) Attributes {
	out := make(Attributes, len(claims))
	for k, v := range claims {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[k] = s
	}
	if _, ok := out[ClaimFirst]; !ok {
		if v, ok := out["given_name"]; ok {
			out[ClaimFirst] = v
		}
	}
	if _, ok := out[ClaimLast]; !ok {
		if v, ok := out["family_name"]; ok {
			out[ClaimLast] = v
		}
	}
	return out
}
