package users

import (
	"context"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresGetProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithExec(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "email", "avatar_url", "provider", "created_at"}).
		AddRow(int64(7), "Sage Barber", "sage@example.com", "", true, now)
	mock.ExpectQuery("SELECT id, name, email, avatar_url, provider, created_at").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	u, err := repo.GetProvider(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetProvider returned error: %v", err)
	}
	if !u.Provider || u.Name != "Sage Barber" {
		t.Fatalf("unexpected user: %#v", u)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithExec(mock)

	mock.ExpectQuery("SELECT id, name, email, avatar_url, provider, created_at").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 99); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestInMemoryGetProviderRejectsNonProvider(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Put(&User{ID: 1, Name: "Client", Provider: false})

	if _, err := repo.GetProvider(context.Background(), 1); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for non-provider, got %v", err)
	}
	if _, err := repo.GetProvider(context.Background(), 2); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for missing user, got %v", err)
	}
}
