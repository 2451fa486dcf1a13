package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/users"
)

// uniqueViolation is the SQLSTATE raised by the partial unique index on
// (provider_id, date) for active rows.
const uniqueViolation = "23505"

type dbQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	pool dbQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec dbQuerier) *PostgresRepository {
	if exec == nil {
		panic("appointments: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// Create inserts a new active appointment row. A concurrent booking of the
// same slot loses the unique-index race and is reported as ErrSlotTaken.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	query := `
		INSERT INTO appointments (date, user_id, provider_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	cp := *appt
	if err := r.pool.QueryRow(ctx, query,
		appt.Date,
		appt.UserID,
		appt.ProviderID,
	).Scan(&cp.ID, &cp.CreatedAt, &cp.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return &cp, nil
}

// GetByID fetches an appointment by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	query := `
		SELECT id, date, user_id, provider_id, canceled_at, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.Date,
		&appt.UserID,
		&appt.ProviderID,
		&appt.CanceledAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return &appt, nil
}

// ExistsActive reports whether a non-canceled appointment holds the slot.
func (r *PostgresRepository) ExistsActive(ctx context.Context, providerID int64, date time.Time) (bool, error) {
	query := `
		SELECT 1
		FROM appointments
		WHERE provider_id = $1 AND date = $2 AND canceled_at IS NULL
	`
	var exists int
	if err := r.pool.QueryRow(ctx, query, providerID, date).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("appointments: check slot: %w", err)
	}
	return true, nil
}

// Cancel sets canceled_at through a compare-and-swap on the null column.
func (r *PostgresRepository) Cancel(ctx context.Context, id int64, at time.Time) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET canceled_at = $2, updated_at = $2
		WHERE id = $1 AND canceled_at IS NULL
		RETURNING id, date, user_id, provider_id, canceled_at, created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query, id, at)
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.Date,
		&appt.UserID,
		&appt.ProviderID,
		&appt.CanceledAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row missing or already canceled; distinguish for the caller.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadyCanceled
		}
		return nil, fmt.Errorf("appointments: cancel failed: %w", err)
	}
	return &appt, nil
}

// ListByUser returns the user's active appointments with the provider joined,
// date ascending.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Appointment, error) {
	query := `
		SELECT a.id, a.date, a.user_id, a.provider_id, a.canceled_at, a.created_at, a.updated_at,
		       p.name, p.avatar_url
		FROM appointments a
		JOIN users p ON p.id = a.provider_id
		WHERE a.user_id = $1 AND a.canceled_at IS NULL
		ORDER BY a.date
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var appt Appointment
		var provider users.Summary
		if err := rows.Scan(
			&appt.ID,
			&appt.Date,
			&appt.UserID,
			&appt.ProviderID,
			&appt.CanceledAt,
			&appt.CreatedAt,
			&appt.UpdatedAt,
			&provider.Name,
			&provider.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		provider.ID = appt.ProviderID
		appt.Provider = &provider
		out = append(out, &appt)
	}
	return out, rows.Err()
}

// ListByProviderRange returns the provider's active appointments within
// [from, to) with the client joined, date ascending.
func (r *PostgresRepository) ListByProviderRange(ctx context.Context, providerID int64, from, to time.Time) ([]*Appointment, error) {
	query := `
		SELECT a.id, a.date, a.user_id, a.provider_id, a.canceled_at, a.created_at, a.updated_at,
		       c.name, c.avatar_url
		FROM appointments a
		JOIN users c ON c.id = a.user_id
		WHERE a.provider_id = $1 AND a.canceled_at IS NULL
		  AND a.date >= $2 AND a.date < $3
		ORDER BY a.date
	`
	rows, err := r.pool.Query(ctx, query, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: list schedule failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var appt Appointment
		var client users.Summary
		if err := rows.Scan(
			&appt.ID,
			&appt.Date,
			&appt.UserID,
			&appt.ProviderID,
			&appt.CanceledAt,
			&appt.CreatedAt,
			&appt.UpdatedAt,
			&client.Name,
			&client.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan schedule failed: %w", err)
		}
		client.ID = appt.UserID
		appt.Client = &client
		out = append(out, &appt)
	}
	return out, rows.Err()
}
