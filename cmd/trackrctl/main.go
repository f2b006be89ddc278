package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/trackr-identity/internal/app"
	"github.com/dropDatabas3/trackr-identity/internal/config"
	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
)

// cli agrupa el estado compartido entre subcomandos.
type cli struct {
	configPath string
	outFormat  string // "json" | "text"
	out        io.Writer

	// build arma el container; los tests lo reemplazan.
	build func(ctx context.Context, configPath string) (*app.Container, error)
}

func defaultBuild(ctx context.Context, configPath string) (*app.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: envOr("TRACKRCTL_LOG_LEVEL", "warn")})
	return app.Build(ctx, cfg)
}

// withContainer corre fn con un container recién armado y lo cierra al final.
func (c *cli) withContainer(cmd *cobra.Command, fn func(ctx context.Context, ct *app.Container) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	ct, err := c.build(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer ct.Close()
	return fn(ctx, ct)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "trackrctl",
		Short:         "CLI admin para trackr-identity (acceso directo al store)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.outFormat {
			case "json", "text":
				return nil
			default:
				return fmt.Errorf("--out debe ser json|text")
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "Ruta al config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.outFormat, "out", c.outFormat, "Formato de salida: json|text (env TRACKRCTL_OUT)")

	root.AddCommand(newMigrateCmd(c), newResolveCmd(c), newAccountCmd(c))
	return root
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar migraciones pendientes del store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, ct *app.Container) error {
				res, err := ct.Migrate(ctx)
				if err != nil {
					return err
				}
				if res == nil {
					fmt.Fprintf(c.out, "driver %s no usa migraciones\n", ct.Conn.Name())
					return nil
				}
				if c.outFormat == "json" {
					return c.printJSON(res)
				}
				fmt.Fprintf(c.out, "applied=%v skipped=%d duration=%s\n", res.Applied, len(res.Skipped), res.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}
}

func newResolveCmd(c *cli) *cobra.Command {
	var email, first, last string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolver una aserción como lo haría el login (puede auto-provisionar)",
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs := map[string]string{"email": email}
			if first != "" {
				attrs["first"] = first
			}
			if last != "" {
				attrs["last"] = last
			}
			return c.withContainer(cmd, func(ctx context.Context, ct *app.Container) error {
				id, err := ct.Resolver.Resolve(ctx, attrs)
				if err != nil {
					return err
				}
				if c.outFormat == "json" {
					return c.printJSON(id)
				}
				fmt.Fprintf(c.out, "ok username=%s id=%s role=%s\n", id.Username, id.CredentialID, id.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Claim email (requerido)")
	cmd.Flags().StringVar(&first, "first", "", "Claim first (opcional)")
	cmd.Flags().StringVar(&last, "last", "", "Claim last (opcional)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	c := &cli{
		configPath: os.Getenv("CONFIG_PATH"),
		outFormat:  envOr("TRACKRCTL_OUT", "text"),
		out:        os.Stdout,
		build:      defaultBuild,
	}
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
