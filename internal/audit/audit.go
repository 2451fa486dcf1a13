// Package audit keeps an immutable trail of appointment lifecycle events.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// EventAppointmentCreated is logged when a booking succeeds.
	EventAppointmentCreated EventType = "appointment.created"
	// EventAppointmentCanceled is logged when a client cancels.
	EventAppointmentCanceled EventType = "appointment.canceled"
)

// Event represents an immutable audit record.
type Event struct {
	ID            string          `json:"id"`
	EventType     EventType       `json:"event_type"`
	AppointmentID int64           `json:"appointment_id"`
	ActorID       int64           `json:"actor_id"`
	Details       json.RawMessage `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Details carries event-specific fields.
type Details struct {
	ProviderID int64     `json:"provider_id,omitempty"`
	Date       time.Time `json:"date,omitempty"`
	CanceledAt time.Time `json:"canceled_at,omitempty"`
}

// Service handles audit logging.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// LogEvent records an audit event.
func (s *Service) LogEvent(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (
			id, event_type, appointment_id, actor_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.AppointmentID,
		event.ActorID,
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to log event: %w", err)
	}

	return nil
}

// AppointmentCreated logs a successful booking.
func (s *Service) AppointmentCreated(ctx context.Context, appointmentID, userID, providerID int64, date time.Time) error {
	details := Details{
		ProviderID: providerID,
		Date:       date,
	}
	detailsJSON, _ := json.Marshal(details)

	return s.LogEvent(ctx, Event{
		EventType:     EventAppointmentCreated,
		AppointmentID: appointmentID,
		ActorID:       userID,
		Details:       detailsJSON,
	})
}

// AppointmentCanceled logs a client cancellation.
func (s *Service) AppointmentCanceled(ctx context.Context, appointmentID, userID int64, canceledAt time.Time) error {
	details := Details{
		CanceledAt: canceledAt,
	}
	detailsJSON, _ := json.Marshal(details)

	return s.LogEvent(ctx, Event{
		EventType:     EventAppointmentCanceled,
		AppointmentID: appointmentID,
		ActorID:       userID,
		Details:       detailsJSON,
	})
}

// QueryEvents retrieves audit events with filters.
func (s *Service) QueryEvents(ctx context.Context, filter Filter) ([]Event, error) {
	query := `
		SELECT id, event_type, appointment_id, actor_id, details, created_at
		FROM audit_events
		WHERE 1=1
	`
	var args []interface{}
	argIdx := 1

	if filter.AppointmentID != 0 {
		query += fmt.Sprintf(" AND appointment_id = $%d", argIdx)
		args = append(args, filter.AppointmentID)
		argIdx++
	}
	if filter.ActorID != 0 {
		query += fmt.Sprintf(" AND actor_id = $%d", argIdx)
		args = append(args, filter.ActorID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EventType, &e.AppointmentID, &e.ActorID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Filter specifies criteria for querying audit events.
type Filter struct {
	AppointmentID int64
	ActorID       int64
	EventType     EventType
	StartTime     time.Time
	EndTime       time.Time
	Limit         int
	Offset        int
}
