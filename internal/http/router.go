package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/trackr-identity/internal/rate"
)

// RouterDeps contiene las dependencias del router.
type RouterDeps struct {
	Resolver Resolver
	Store    Pinger
	// Cache es opcional; si está se reporta en /healthz.
	Cache Pinger
	// Metrics es el handler de /metrics. Si es nil se usa promhttp.Handler().
	Metrics http.Handler
	// Limiter es opcional; nil desactiva el rate limit de /resolve.
	Limiter rate.Limiter
	// TrustForwardedFor: solo si el servicio corre detrás de un proxy propio.
	TrustForwardedFor bool
}

// NewRouter arma el router chi con la cadena base de middlewares.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRecover(), WithRequestID(), WithMetrics())

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	// Infra: sin logging por request (muy frecuentes)
	r.Get("/healthz", NewHealthHandler(deps.Store, deps.Cache).Healthz)
	r.Handle("/metrics", metricsHandler)

	r.Route("/v1/identity", func(r chi.Router) {
		r.Use(WithLogging())
		r.With(WithRateLimit(deps.Limiter, deps.TrustForwardedFor)).Post("/resolve", NewIdentityHandler(deps.Resolver).Resolve)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: "Ruta no encontrada."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "method_not_allowed", Message: "Método no permitido."})
	})
	return r
}
