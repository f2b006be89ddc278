package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/trackr-identity/internal/identity"
)

// AppError define la estructura estándar para errores HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa original, solo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail devuelve una COPIA con detalle adicional.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

var (
	ErrInvalidJSON = &AppError{
		Code:       "invalid_json",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidAssertion = &AppError{
		Code:       "invalid_assertion",
		Message:    "La aserción no contiene el claim email.",
		HTTPStatus: http.StatusBadRequest,
	}

	// Mismo cuerpo para cuenta desconocida y cuenta deshabilitada.
	ErrAccessDenied = &AppError{
		Code:       "access_denied",
		Message:    "No se pudo iniciar sesión con esta cuenta.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrRateLimited = &AppError{
		Code:       "rate_limited",
		Message:    "Demasiadas solicitudes, intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "store_unavailable",
		Message:    "El servicio no está disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	ErrInternalServerError = &AppError{
		Code:       "internal_error",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// FromError convierte errores de identity (o cualquier otro) en AppError.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, identity.ErrMalformedAssertion):
		return ErrInvalidAssertion.WithCause(err)
	case identity.IsRejection(err):
		return ErrAccessDenied.WithCause(err)
	case errors.Is(err, identity.ErrStoreUnavailable):
		return ErrStoreUnavailable.WithCause(err)
	default:
		return ErrInternalServerError.WithCause(err)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe la respuesta JSON para err. La causa nunca se expone.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	WriteJSON(w, appErr.HTTPStatus, errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
