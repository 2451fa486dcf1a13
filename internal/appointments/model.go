package appointments

import (
	"time"

	"github.com/slotwise/slotwise/internal/schedule"
	"github.com/slotwise/slotwise/internal/users"
)

// Appointment represents a one-hour booking slot held by a client with a provider.
type Appointment struct {
	ID         int64      `json:"id"`
	Date       time.Time  `json:"date"`
	UserID     int64      `json:"user_id"`
	ProviderID int64      `json:"provider_id"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Provider is joined for client-facing listings, Client for provider schedules.
	Provider *users.Summary `json:"provider,omitempty"`
	Client   *users.Summary `json:"client,omitempty"`
}

// Canceled reports whether the appointment has been canceled.
func (a *Appointment) Canceled() bool {
	return a.CanceledAt != nil
}

// Past reports whether the slot lies strictly before now.
func (a *Appointment) Past(now time.Time) bool {
	return schedule.IsPast(a.Date, now)
}

// Cancellable reports whether now is still ahead of the cancellation window.
func (a *Appointment) Cancellable(now time.Time, windowHours int) bool {
	if a.Canceled() {
		return false
	}
	return now.Before(schedule.HoursBefore(a.Date, windowHours))
}

// View is an appointment annotated with its derived flags for presentation.
type View struct {
	*Appointment
	Past        bool `json:"past"`
	Cancellable bool `json:"cancellable"`
}

// BookRequest represents the request body for creating an appointment
type BookRequest struct {
	ProviderID int64     `json:"provider_id"`
	Date       time.Time `json:"date"`
}

// Validate validates the booking request
func (r *BookRequest) Validate() error {
	if r.ProviderID <= 0 {
		return ErrInvalidProvider
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// CancellationJob is the snapshot handed to the mail queue when an
// appointment is canceled. The queue owns it from submission onward.
type CancellationJob struct {
	AppointmentID int64
	Date          time.Time
	CanceledAt    time.Time
	ClientName    string
	ClientEmail   string
	ProviderName  string
	ProviderEmail string
}
