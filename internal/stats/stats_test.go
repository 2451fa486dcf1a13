package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/slotwise/slotwise/internal/identity"
	"github.com/slotwise/slotwise/internal/users"
)

func expectAllTimeQueries(mock pgxmock.PgxPoolIface, providerID int64) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE provider_id = \$1`).
		WithArgs(providerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE provider_id = \$1 AND canceled_at IS NULL`).
		WithArgs(providerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(9)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE provider_id = \$1 AND canceled_at IS NOT NULL`).
		WithArgs(providerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE provider_id = \$1 AND canceled_at IS NULL AND date >= NOW\(\)`).
		WithArgs(providerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT user_id\) FROM appointments WHERE provider_id = \$1 AND canceled_at IS NULL`).
		WithArgs(providerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(6)))
}

func TestRepository_GetProviderStats_AllTime(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	expectAllTimeQueries(mock, 2)

	repo := NewRepositoryWithDB(mock)
	stats, err := repo.GetProviderStats(context.Background(), 2, nil, nil)
	if err != nil {
		t.Fatalf("GetProviderStats failed: %v", err)
	}

	if stats.ProviderID != 2 {
		t.Errorf("ProviderID = %d, want 2", stats.ProviderID)
	}
	if stats.TotalBooked != 12 {
		t.Errorf("TotalBooked = %d, want 12", stats.TotalBooked)
	}
	if stats.Active != 9 {
		t.Errorf("Active = %d, want 9", stats.Active)
	}
	if stats.Canceled != 3 {
		t.Errorf("Canceled = %d, want 3", stats.Canceled)
	}
	if stats.UpcomingWeek != 4 {
		t.Errorf("UpcomingWeek = %d, want 4", stats.UpcomingWeek)
	}
	if stats.UniqueClients != 6 {
		t.Errorf("UniqueClients = %d, want 6", stats.UniqueClients)
	}
	if stats.PeriodStart != "all-time" {
		t.Errorf("PeriodStart = %q, want 'all-time'", stats.PeriodStart)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandler_GetMine(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	expectAllTimeQueries(mock, 2)

	userRepo := users.NewInMemoryRepository()
	userRepo.Put(&users.User{ID: 1, Name: "Cleo Client"})
	userRepo.Put(&users.User{ID: 2, Name: "Pat Provider", Provider: true})

	handler := NewHandler(NewRepositoryWithDB(mock), userRepo, nil)

	req := httptest.NewRequest(http.MethodGet, "/providers/me/stats", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	handler.GetMine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var stats ProviderStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.TotalBooked != 12 {
		t.Errorf("TotalBooked = %d, want 12", stats.TotalBooked)
	}
}

func TestHandler_GetMineRejectsNonProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	userRepo := users.NewInMemoryRepository()
	userRepo.Put(&users.User{ID: 1, Name: "Cleo Client"})

	handler := NewHandler(NewRepositoryWithDB(mock), userRepo, nil)

	req := httptest.NewRequest(http.MethodGet, "/providers/me/stats", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	handler.GetMine(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandler_GetMineRequiresBothBounds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	userRepo := users.NewInMemoryRepository()
	userRepo.Put(&users.User{ID: 2, Name: "Pat Provider", Provider: true})

	handler := NewHandler(NewRepositoryWithDB(mock), userRepo, nil)

	req := httptest.NewRequest(http.MethodGet, "/providers/me/stats?start=2024-01-01T00:00:00Z", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	handler.GetMine(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
