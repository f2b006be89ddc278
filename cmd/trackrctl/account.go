package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/trackr-identity/internal/app"
	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
)

func newAccountCmd(c *cli) *cobra.Command {
	acc := &cobra.Command{
		Use:   "account",
		Short: "Consultar y aprobar cuentas",
	}
	acc.AddCommand(newAccountListCmd(c), newAccountShowCmd(c),
		newAccountSetEnabledCmd(c, "enable", true), newAccountSetEnabledCmd(c, "disable", false))
	return acc
}

// lookup acepta un email (contiene "@") o un ID de credencial.
func lookup(ctx context.Context, repo repository.AccountRepository, ref string) (*repository.Credential, error) {
	if strings.Contains(ref, "@") {
		return repo.GetCredentialByEmail(ctx, ref)
	}
	return repo.GetCredentialByID(ctx, ref)
}

func newAccountListCmd(c *cli) *cobra.Command {
	var (
		search string
		state  string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Listar credenciales (más nuevas primero)",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.ListCredentialsFilter{Limit: limit, Offset: offset, Search: search}
			switch state {
			case "", "all":
			case "enabled", "pending":
				enabled := state == "enabled"
				filter.Enabled = &enabled
			default:
				return fmt.Errorf("--state debe ser all|enabled|pending")
			}

			return c.withContainer(cmd, func(ctx context.Context, ct *app.Container) error {
				creds, err := ct.Accounts.ListCredentials(ctx, filter)
				if err != nil {
					return err
				}
				if c.outFormat == "json" {
					if creds == nil {
						creds = []repository.Credential{}
					}
					return c.printJSON(creds)
				}
				tw := c.table()
				fmt.Fprintln(tw, "ID\tEMAIL\tENABLED\tCREATED")
				for _, cr := range creds {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", cr.ID, cr.Email, cr.Enabled, cr.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filtrar por substring del email")
	cmd.Flags().StringVar(&state, "state", "all", "all|enabled|pending")
	cmd.Flags().IntVar(&limit, "limit", 50, "Máximo de resultados (tope 200)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset de paginación")
	return cmd
}

type accountView struct {
	repository.Credential
	Profile *repository.Profile `json:"profile,omitempty"`
}

func newAccountShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <email|id>",
		Short: "Mostrar credencial y perfil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, ct *app.Container) error {
				cred, err := lookup(ctx, ct.Accounts, args[0])
				if err != nil {
					return fmt.Errorf("account %q: %w", args[0], err)
				}
				view := accountView{Credential: *cred}
				if p, err := ct.Accounts.GetProfileByID(ctx, cred.ID); err == nil {
					view.Profile = p
				} else if !repository.IsNotFound(err) {
					return err
				}

				if c.outFormat == "json" {
					return c.printJSON(view)
				}
				tw := c.table()
				fmt.Fprintf(tw, "id\t%s\n", cred.ID)
				fmt.Fprintf(tw, "email\t%s\n", cred.Email)
				fmt.Fprintf(tw, "enabled\t%t\n", cred.Enabled)
				fmt.Fprintf(tw, "created\t%s\n", cred.CreatedAt.Format(time.RFC3339))
				if p := view.Profile; p != nil {
					fmt.Fprintf(tw, "name\t%s\n", strings.TrimSpace(p.FirstName+" "+p.LastName))
					fmt.Fprintf(tw, "role\t%s\n", p.Role)
				}
				return tw.Flush()
			})
		},
	}
}

func newAccountSetEnabledCmd(c *cli, use string, enabled bool) *cobra.Command {
	short := "Habilitar una cuenta pendiente"
	if !enabled {
		short = "Deshabilitar una cuenta"
	}
	return &cobra.Command{
		Use:   use + " <email|id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, ct *app.Container) error {
				cred, err := lookup(ctx, ct.Accounts, args[0])
				if err != nil {
					return fmt.Errorf("account %q: %w", args[0], err)
				}
				if err := ct.Accounts.SetEnabled(ctx, cred.ID, enabled); err != nil {
					return err
				}
				if c.outFormat == "json" {
					cred.Enabled = enabled
					return c.printJSON(cred)
				}
				fmt.Fprintf(c.out, "%s %sd\n", cred.Email, use)
				return nil
			})
		},
	}
}
