// Package stats aggregates per-provider booking metrics.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/slotwise/internal/identity"
	"github.com/slotwise/slotwise/internal/users"
	"github.com/slotwise/slotwise/pkg/logging"
)

// ProviderStats summarizes a provider's bookings.
type ProviderStats struct {
	ProviderID    int64  `json:"provider_id"`
	TotalBooked   int64  `json:"total_booked"`
	Active        int64  `json:"active"`
	Canceled      int64  `json:"canceled"`
	UpcomingWeek  int64  `json:"upcoming_week"`
	UniqueClients int64  `json:"unique_clients"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
}

// statsDB defines the database interface needed by Repository.
type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository queries provider metrics from the database.
type Repository struct {
	db statsDB
}

// NewRepository creates a new stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("stats: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db statsDB) *Repository {
	return &Repository{db: db}
}

// GetProviderStats retrieves aggregated metrics for a provider.
// Optional start/end times for filtering. If nil, returns all-time stats.
func (r *Repository) GetProviderStats(ctx context.Context, providerID int64, start, end *time.Time) (*ProviderStats, error) {
	stats := &ProviderStats{ProviderID: providerID}

	var timeFilter string
	var args []interface{}
	args = append(args, providerID)
	argIdx := 2

	if start != nil && end != nil {
		timeFilter = fmt.Sprintf(" AND date >= $%d AND date < $%d", argIdx, argIdx+1)
		args = append(args, *start, *end)
		stats.PeriodStart = start.Format(time.RFC3339)
		stats.PeriodEnd = end.Format(time.RFC3339)
	} else {
		stats.PeriodStart = "all-time"
		stats.PeriodEnd = "now"
	}

	totalQuery := `SELECT COUNT(*) FROM appointments WHERE provider_id = $1` + timeFilter
	if err := r.db.QueryRow(ctx, totalQuery, args...).Scan(&stats.TotalBooked); err != nil {
		return nil, fmt.Errorf("stats: count bookings: %w", err)
	}

	activeQuery := `SELECT COUNT(*) FROM appointments WHERE provider_id = $1 AND canceled_at IS NULL` + timeFilter
	if err := r.db.QueryRow(ctx, activeQuery, args...).Scan(&stats.Active); err != nil {
		return nil, fmt.Errorf("stats: count active: %w", err)
	}

	canceledQuery := `SELECT COUNT(*) FROM appointments WHERE provider_id = $1 AND canceled_at IS NOT NULL` + timeFilter
	if err := r.db.QueryRow(ctx, canceledQuery, args...).Scan(&stats.Canceled); err != nil {
		return nil, fmt.Errorf("stats: count canceled: %w", err)
	}

	upcomingQuery := `SELECT COUNT(*) FROM appointments WHERE provider_id = $1 AND canceled_at IS NULL AND date >= NOW() AND date < NOW() + INTERVAL '7 days'`
	if err := r.db.QueryRow(ctx, upcomingQuery, providerID).Scan(&stats.UpcomingWeek); err != nil {
		return nil, fmt.Errorf("stats: count upcoming: %w", err)
	}

	clientsQuery := `SELECT COUNT(DISTINCT user_id) FROM appointments WHERE provider_id = $1 AND canceled_at IS NULL` + timeFilter
	if err := r.db.QueryRow(ctx, clientsQuery, args...).Scan(&stats.UniqueClients); err != nil {
		return nil, fmt.Errorf("stats: count clients: %w", err)
	}

	return stats, nil
}

// Handler provides the provider statistics endpoint.
type Handler struct {
	repo   *Repository
	users  users.Repository
	logger *logging.Logger
}

// NewHandler creates a new stats HTTP handler.
func NewHandler(repo *Repository, userRepo users.Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		users:  userRepo,
		logger: logger,
	}
}

// GetMine returns aggregated metrics for the calling provider.
// GET /providers/me/stats
// Query params:
//   - start: RFC3339 timestamp for period start (optional)
//   - end: RFC3339 timestamp for period end (optional)
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "missing user identity"}`, http.StatusUnauthorized)
		return
	}
	if _, err := h.users.GetProvider(r.Context(), userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, `{"error": "only providers can load stats"}`, http.StatusUnauthorized)
			return
		}
		h.logger.Error("failed to verify provider", "user_id", userID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	var start, end *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, `{"error": "invalid start time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		start = &t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			http.Error(w, `{"error": "invalid end time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		end = &t
	}

	// If only one is provided, require both
	if (start == nil) != (end == nil) {
		http.Error(w, `{"error": "both start and end must be provided, or neither"}`, http.StatusBadRequest)
		return
	}

	stats, err := h.repo.GetProviderStats(r.Context(), userID, start, end)
	if err != nil {
		h.logger.Error("failed to get provider stats", "provider_id", userID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to encode provider stats", "provider_id", userID, "error", err)
	}
}
