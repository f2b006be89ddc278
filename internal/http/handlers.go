package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/trackr-identity/internal/identity"
	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
)

// Resolver es lo que el transporte necesita del core de identidad.
type Resolver interface {
	Resolve(ctx context.Context, attrs identity.Attributes) (identity.ResolvedIdentity, error)
}

// Pinger verifica la conectividad con el store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IdentityHandler expone Resolve sobre HTTP.
type IdentityHandler struct {
	resolver Resolver
}

// NewIdentityHandler crea el handler.
func NewIdentityHandler(r Resolver) *IdentityHandler {
	return &IdentityHandler{resolver: r}
}

// Resolve maneja POST /v1/identity/resolve.
// El body es un objeto JSON de claims; solo los valores string se conservan.
func (h *IdentityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, ErrInvalidJSON.WithDetail("Content-Type debe ser application/json"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	defer r.Body.Close()

	var claims map[string]any
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		if err == io.EOF {
			WriteError(w, ErrInvalidAssertion)
			return
		}
		WriteError(w, ErrInvalidJSON)
		return
	}

	id, err := h.resolver.Resolve(r.Context(), identity.AttributesFromClaims(claims))
	if err != nil {
		appErr := FromError(err)
		if appErr.HTTPStatus >= 500 {
			logger.From(r.Context()).Error("resolve failed", logger.Layer("handler"), logger.Err(err))
		}
		WriteError(w, appErr)
		return
	}

	WriteJSON(w, http.StatusOK, id)
}

// HealthHandler reporta el estado del store y, si hay, del cache.
type HealthHandler struct {
	store   Pinger
	cache   Pinger
	timeout time.Duration
}

// NewHealthHandler crea el handler de /healthz. cache puede ser nil.
func NewHealthHandler(store, cache Pinger) *HealthHandler {
	return &HealthHandler{store: store, cache: cache, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Cache  string `json:"cache,omitempty"`
}

// Healthz maneja GET /healthz. Store caído => 503; cache caído => 200 degraded,
// porque el resolver sigue funcionando sin cache.
// Los errores solo van al log: la respuesta no expone detalles de conexión.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	log := logger.From(r.Context()).With(logger.Layer("handler"), logger.Op("healthz"))

	resp := healthResponse{Status: "ok", Store: "up"}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		log.Warn("store ping failed", logger.Err(err))
		resp.Status, resp.Store = "degraded", "down"
		status = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		resp.Cache = "up"
		if err := h.cache.Ping(ctx); err != nil {
			log.Warn("cache ping failed", logger.Err(err))
			resp.Status, resp.Cache = "degraded", "down"
		}
	}
	WriteJSON(w, status, resp)
}
