package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/trackr-identity/internal/domain/repository"
)

// ─── AccountRepository ───

type accountRepo struct{ pool *pgxpool.Pool }

func (r *accountRepo) GetCredentialByEmail(ctx context.Context, email string) (*repository.Credential, error) {
	const query = `SELECT id, email, enabled, created_at FROM credential WHERE email = $1`

	var c repository.Credential
	err := r.pool.QueryRow(ctx, query, email).Scan(&c.ID, &c.Email, &c.Enabled, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get credential by email: %w", err)
	}
	return &c, nil
}

func (r *accountRepo) GetCredentialByID(ctx context.Context, id string) (*repository.Credential, error) {
	const query = `SELECT id, email, enabled, created_at FROM credential WHERE id = $1`

	var c repository.Credential
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Email, &c.Enabled, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get credential by id: %w", err)
	}
	return &c, nil
}

func (r *accountRepo) GetProfileByID(ctx context.Context, id string) (*repository.Profile, error) {
	const query = `
		SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''), role, created_at
		FROM profile WHERE id = $1
	`

	var p repository.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get profile: %w", err)
	}
	return &p, nil
}

func (r *accountRepo) CreateCredentialAndProfile(ctx context.Context, input repository.CreateAccountInput) (*repository.Credential, *repository.Profile, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, nil, repository.ErrInvalidInput
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("pg: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cred := &repository.Credential{Email: input.Email, Enabled: input.Enabled}

	// La UNIQUE de email decide la carrera entre dos primeros logins concurrentes.
	const insertCredential = `
		INSERT INTO credential (email, enabled)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertCredential, input.Email, input.Enabled).Scan(&cred.ID, &cred.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, repository.ErrConflict
		}
		return nil, nil, fmt.Errorf("pg: insert credential: %w", err)
	}

	role := input.Role
	if role == "" {
		role = "employee"
	}
	prof := &repository.Profile{
		ID:        cred.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
	}

	const insertProfile = `
		INSERT INTO profile (id, first_name, last_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertProfile,
		prof.ID, nullIfEmpty(input.FirstName), nullIfEmpty(input.LastName), role,
	).Scan(&prof.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("pg: insert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("pg: commit tx: %w", err)
	}

	return cred, prof, nil
}

func (r *accountRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE credential SET enabled = $2 WHERE id = $1`, id, enabled)
	if isInvalidID(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("pg: set enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepo) ListCredentials(ctx context.Context, filter repository.ListCredentialsFilter) ([]repository.Credential, error) {
	filter = filter.Normalize()

	query := `SELECT id, email, enabled, created_at FROM credential WHERE 1=1`
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND email ILIKE $%d", len(args))
	}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		query += fmt.Sprintf(" AND enabled = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, email LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: list credentials: %w", err)
	}
	defer rows.Close()

	var out []repository.Credential
	for rows.Next() {
		var c repository.Credential
		if err := rows.Scan(&c.ID, &c.Email, &c.Enabled, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("pg: scan credential: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
