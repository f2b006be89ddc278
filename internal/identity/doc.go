// Package identity resuelve una aserción de login federado (ya verificada)
// contra el account store.
//
// # Flujo
//
//	Attributes ──► email ──► GetCredentialByEmail
//	                              │
//	          ┌───────────────────┼───────────────────────┐
//	          ▼                   ▼                       ▼
//	   found+enabled       found+disabled             not found
//	     (success)       ErrAccountNotUsable     Provisioner.MaybeProvision
//	                                               │               │
//	                                            Created         Rejected
//	                                     ErrAccountNotUsable  ErrUnknownAccount
//
// Un primer login nunca tiene éxito: la cuenta creada nace deshabilitada y
// requiere aprobación administrativa (trackrctl account enable).
//
// El store se inyecta por constructor; el paquete no usa estado global.
package identity
