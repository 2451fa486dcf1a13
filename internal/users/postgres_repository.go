package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec rowQuerier) *PostgresRepository {
	if exec == nil {
		panic("users: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// GetByID fetches a user by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, `
		SELECT id, name, email, avatar_url, provider, created_at
		FROM users
		WHERE id = $1
	`, id)
}

// GetProvider fetches a user only when the provider flag is set.
func (r *PostgresRepository) GetProvider(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, `
		SELECT id, name, email, avatar_url, provider, created_at
		FROM users
		WHERE id = $1 AND provider = TRUE
	`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, query, id)
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.AvatarURL,
		&u.Provider,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &u, nil
}
