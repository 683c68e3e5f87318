package session

import (
	"context"
	"errors"

	"camisfut-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Session) error {
	const q = `
INSERT INTO sessions (token, upstream_token, user_id, user_name, user_email, user_roles, legacy_logged_in, legacy_user_name, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	var (
		userID *string
		name   string
		email  string
		roles  = []string{}
	)
	if s.User != nil {
		userID = &s.User.ID
		name = s.User.Name
		email = s.User.Email
		if s.User.Roles != nil {
			roles = s.User.Roles
		}
	}
	_, err := r.pool.Exec(ctx, q, s.Token, s.UpstreamToken, userID, name, email, roles, s.LegacyLoggedIn, s.LegacyUserName, s.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, token string) (*domain.Session, error) {
	const q = `
SELECT token, upstream_token, user_id, user_name, user_email, user_roles, legacy_logged_in, legacy_user_name, created_at, expires_at
FROM sessions
WHERE token = $1
LIMIT 1
`
	var (
		out    domain.Session
		userID *string
		name   string
		email  string
		roles  []string
	)
	if err := r.pool.QueryRow(ctx, q, token).Scan(
		&out.Token,
		&out.UpstreamToken,
		&userID,
		&name,
		&email,
		&roles,
		&out.LegacyLoggedIn,
		&out.LegacyUserName,
		&out.CreatedAt,
		&out.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if userID != nil {
		out.User = &domain.User{ID: *userID, Name: name, Email: email, Roles: roles}
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
