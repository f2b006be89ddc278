package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
	"github.com/dropDatabas3/trackr-identity/internal/rate"
)

// clientIP retorna la IP que se usa como key del rate limit.
// Solo con trustForwarded se mira X-Forwarded-For, y se toma el último hop:
// es el que agregó nuestro proxy. Los anteriores los controla el cliente.
func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
			parts := strings.Split(xf, ",")
			if last := strings.TrimSpace(parts[len(parts)-1]); last != "" {
				return last
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithRateLimit aplica un límite fixed-window por IP. Con lim nil no hace nada.
// Si el backend falla se deja pasar la request (fail-open).
func WithRateLimit(lim rate.Limiter, trustForwarded bool) Middleware {
	return func(next http.Handler) http.Handler {
		if lim == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustForwarded)
			res, err := lim.Allow(r.Context(), "resolve:"+ip)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				logger.From(r.Context()).Warn("rate limited", logger.String("client_ip", ip))
				WriteError(w, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
