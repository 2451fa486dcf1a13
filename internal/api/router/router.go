package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slotwise/slotwise/internal/appointments"
	httpmiddleware "github.com/slotwise/slotwise/internal/http/middleware"
	"github.com/slotwise/slotwise/internal/notifications"
	"github.com/slotwise/slotwise/internal/stats"
	"github.com/slotwise/slotwise/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	AppointmentsHandler  *appointments.Handler
	NotificationsHandler *notifications.Handler
	StatsHandler         *stats.Handler
	MetricsHandler       http.Handler
	AuthSecret           string
	CORSAllowedOrigins   []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated API
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.Auth(cfg.AuthSecret))

		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.AppointmentsHandler.Create)
				r.Get("/", cfg.AppointmentsHandler.List)
				r.Delete("/{id}", cfg.AppointmentsHandler.Cancel)
			})
			api.Get("/providers/me/schedule", cfg.AppointmentsHandler.Schedule)
		}

		if cfg.NotificationsHandler != nil {
			api.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationsHandler.List)
				r.Put("/{id}", cfg.NotificationsHandler.MarkRead)
			})
		}

		if cfg.StatsHandler != nil {
			api.Get("/providers/me/stats", cfg.StatsHandler.GetMine)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
