package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slotwise/slotwise/internal/identity"
	"github.com/slotwise/slotwise/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Create handles POST /appointments requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.service.Book(r.Context(), userID, &req)
	if err != nil {
		// The appointment may exist even when the notification step failed;
		// surface the failure without hiding the created record.
		if appt != nil {
			h.logger.Error("appointment booked but notification failed", "error", err, "appointment_id", appt.ID)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// ListResponse is the response for listing appointments
type ListResponse struct {
	Appointments []View `json:"appointments"`
	Page         int    `json:"page"`
	Count        int    `json:"count"`
}

// List handles GET /appointments requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	views, err := h.service.List(r.Context(), userID, page)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Appointments: views,
		Page:         page,
		Count:        len(views),
	})
}

// Cancel handles DELETE /appointments/{id} requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	appt, err := h.service.Cancel(r.Context(), userID, id)
	if err != nil {
		if appt != nil {
			// Canceled, but the mail job was not accepted by the queue.
			h.logger.Error("appointment canceled but mail job failed", "error", err, "appointment_id", appt.ID)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Schedule handles GET /schedule requests for providers
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	at := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		at = parsed
	}

	appts, err := h.service.ListSchedule(r.Context(), userID, at)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts, "count": len(appts)})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidProvider),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrPastDate),
		errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrAlreadyCanceled),
		errors.Is(err, ErrCancellationWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotProvider):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("appointment request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
