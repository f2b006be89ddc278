package identity

import "strings"

// Allowlist es el set de dominios cuyos usuarios se auto-provisionan.
// La comparación es exacta y case-insensitive; subdominios no matchean.
type Allowlist struct {
	domains map[string]struct{}
}

// NewAllowlist normaliza los dominios (trim, lower, sin "@" inicial).
func NewAllowlist(domains []string) Allowlist {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return Allowlist{domains: set}
}

// DomainOf retorna la parte posterior al último "@" en minúsculas.
// Falla si falta la parte local o el dominio.
func DomainOf(email string) (string, bool) {
	i := strings.LastIndexByte(email, '@')
	if i <= 0 || i == len(email)-1 {
		return "", false
	}
	return strings.ToLower(email[i+1:]), true
}

// Recognizes reporta si el dominio del email está en la allowlist.
func (a Allowlist) Recognizes(email string) bool {
	d, ok := DomainOf(email)
	if !ok {
		return false
	}
	_, ok = a.domains[d]
	return ok
}

// Len retorna la cantidad de dominios.
func (a Allowlist) Len() int { return len(a.domains) }
