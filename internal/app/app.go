// Package app arma el grafo de dependencias del servicio a partir de la config.
// Lo usan tanto el servidor como trackrctl.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/trackr-identity/internal/cache"
	"github.com/dropDatabas3/trackr-identity/internal/config"
	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
	httpx "github.com/dropDatabas3/trackr-identity/internal/http"
	"github.com/dropDatabas3/trackr-identity/internal/identity"
	"github.com/dropDatabas3/trackr-identity/internal/metrics"
	"github.com/dropDatabas3/trackr-identity/internal/notify"
	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
	"github.com/dropDatabas3/trackr-identity/internal/rate"
	"github.com/dropDatabas3/trackr-identity/internal/store"
	"github.com/dropDatabas3/trackr-identity/internal/store/cached"
	"github.com/dropDatabas3/trackr-identity/migrations/postgres"

	// Registra los adapters (postgres, memory, noop) vía init()
	_ "github.com/dropDatabas3/trackr-identity/internal/store/adapters/dal"
)

// Container agrupa las dependencias construidas.
type Container struct {
	Conn     store.AdapterConnection
	Accounts repository.AccountRepository
	Cache    cache.Client
	Notifier notify.Notifier
	Resolver *identity.Resolver
	Limiter  rate.Limiter

	trustForwardedFor bool
}

// Build conecta el store, el cache y arma el resolver.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.L().With(logger.Component("app"))

	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Info("store connected", logger.String("driver", conn.Name()))

	c := &Container{Conn: conn}

	if cfg.Cache.Kind != "none" {
		cc, err := cache.New(cache.Config{
			Driver:     cfg.Cache.Kind,
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			Prefix:     cfg.Cache.Redis.Prefix,
			DefaultTTL: cfg.MemoryDefaultTTL(),
		})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open cache: %w", err)
		}
		c.Cache = cc
	}
	if c.Cache != nil {
		c.Accounts = cached.Wrap(conn.Accounts(), c.Cache, cfg.ProfileTTL())
	} else {
		c.Accounts = conn.Accounts()
	}

	c.Notifier = notify.Noop{}
	if len(cfg.Provisioning.Notify) > 0 {
		c.Notifier = notify.NewMail(&notify.SMTPSender{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			From:               cfg.SMTP.From,
			User:               cfg.SMTP.Username,
			Pass:               cfg.SMTP.Password,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}, cfg.Provisioning.Notify)
	}

	allow := identity.NewAllowlist(cfg.Provisioning.RecognizedDomains)
	if allow.Len() == 0 {
		log.Warn("no recognized domains configured, auto-provisioning disabled")
	}
	prov := identity.NewProvisioner(c.Accounts, allow,
		identity.WithDefaultRole(cfg.Provisioning.DefaultRole),
		identity.WithNotifier(c.Notifier),
	)
	c.Resolver = identity.NewResolver(c.Accounts, prov)

	c.trustForwardedFor = cfg.Rate.TrustForwardedFor
	if cfg.Rate.Enabled {
		if rdb, ok := cache.RedisOf(c.Cache); ok {
			c.Limiter = rate.NewRedisLimiter(rdb, cfg.Cache.Redis.Prefix+":rl:", cfg.Rate.MaxRequests, cfg.RateWindow())
		} else {
			c.Limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
		}
		log.Info("rate limit enabled",
			logger.Int("max_requests", cfg.Rate.MaxRequests),
			logger.String("window", cfg.Rate.Window),
		)
	}

	return c, nil
}

// Migrate aplica las migraciones embebidas si el store las soporta.
// Retorna (nil, nil) para drivers sin migraciones (memory, noop).
func (c *Container) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	mc, ok := c.Conn.(store.MigratableConnection)
	if !ok {
		return nil, nil
	}
	m := store.NewMigrator(migrations.FS, migrations.Dir)
	return m.Run(ctx, mc.GetMigrationExecutor())
}

// Handler registra métricas y retorna el router HTTP.
func (c *Container) Handler(reg prometheus.Registerer) (http.Handler, error) {
	if err := metrics.RegisterIdentity(reg); err != nil {
		return nil, err
	}
	if err := httpx.RegisterHTTPMetrics(reg); err != nil {
		return nil, err
	}
	if err := metrics.RegisterCache(reg, c.Cache); err != nil {
		return nil, err
	}
	if p, ok := c.Conn.(interface{ Pool() *pgxpool.Pool }); ok {
		if err := metrics.RegisterPool(reg, p.Pool); err != nil {
			return nil, err
		}
	}

	var metricsHandler http.Handler
	if g, ok := reg.(prometheus.Gatherer); ok {
		metricsHandler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}

	return httpx.NewRouter(httpx.RouterDeps{
		Resolver: c.Resolver,
		Store:    c.Conn,
		Cache:    c.Cache,
		Metrics:  metricsHandler,
		Limiter:  c.Limiter,

		TrustForwardedFor: c.trustForwardedFor,
	}), nil
}

// Close libera cache y store.
func (c *Container) Close() error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Conn != nil {
		errs = append(errs, c.Conn.Close())
	}
	return errors.Join(errs...)
}
