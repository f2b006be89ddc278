package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dropDatabas3/trackr-identity/internal/app"
	"github.com/dropDatabas3/trackr-identity/internal/config"
	httpx "github.com/dropDatabas3/trackr-identity/internal/http"
	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al config.yaml (opcional)")
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️  error loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "trackr-identity",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	if cfg.Flags.Migrate {
		res, err := c.Migrate(ctx)
		if err != nil {
			lg.Fatal("migrations failed", logger.Err(err))
		}
		if res != nil {
			lg.Info("migrations done",
				logger.Int("applied", len(res.Applied)),
				logger.Int("skipped", len(res.Skipped)),
				logger.Duration(res.Duration),
			)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	handler, err := c.Handler(reg)
	if err != nil {
		lg.Fatal("metrics registration failed", logger.Err(err))
	}

	if err := httpx.Serve(ctx, cfg.Server.Addr, handler, cfg.ShutdownTimeout()); err != nil {
		lg.Fatal("http server failed", logger.Err(err))
	}
	lg.Info("bye")
}
