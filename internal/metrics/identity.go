// Package metrics define las métricas Prometheus del servicio.
// Vive en un paquete propio para que identity y http las compartan sin ciclos.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de Resolve (label outcome).
const (
	ResolveSuccess    = "success"
	ResolveMalformed  = "malformed"
	ResolveUnknown    = "unknown"
	ResolveNotUsable  = "not_usable"
	ResolveStoreError = "store_error"
)

// Resultados de la decisión de provisioning (label outcome).
const (
	ProvisionCreated  = "created"
	ProvisionRejected = "rejected"
	ProvisionConflict = "conflict"
	ProvisionError    = "error"
)

var (
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackr_identity_resolutions_total",
		Help: "Resoluciones de identidad por resultado",
	}, []string{"outcome"})

	ProvisioningTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackr_identity_provisioning_total",
		Help: "Decisiones de provisioning por resultado",
	}, []string{"outcome"})

	ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trackr_identity_resolve_duration_seconds",
		Help:    "Latencia de Resolve incluyendo el store",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)

// RecordResolution registra el resultado y la duración de un Resolve.
func RecordResolution(outcome string, d time.Duration) {
	ResolutionsTotal.WithLabelValues(outcome).Inc()
	ResolveDuration.Observe(d.Seconds())
}

// RecordProvisioning registra una decisión de provisioning.
func RecordProvisioning(outcome string) {
	ProvisioningTotal.WithLabelValues(outcome).Inc()
}

// RegisterIdentity registra las métricas de identidad en el registry dado (o el default si es nil).
func RegisterIdentity(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{ResolutionsTotal, ProvisioningTotal, ResolveDuration} {
		if err := register(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// register registra el collector ignorando duplicados.
func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
