package jobs

import (
	"encoding/json"
	"fmt"
	"time"
)

// KindAppointmentCanceled tags cancellation-mail messages on the wire.
const KindAppointmentCanceled = "appointment.canceled"

// Party identifies one side of a canceled appointment.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CanceledAppointment is the snapshot shipped to the mail worker. It carries
// everything the worker needs so it never has to reach back into the database.
type CanceledAppointment struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	CanceledAt time.Time `json:"canceled_at"`
	Client     Party     `json:"client"`
	Provider   Party     `json:"provider"`
}

// CancellationPayload is the queue message body for a cancellation mail job.
type CancellationPayload struct {
	JobID       string              `json:"job_id"`
	Kind        string              `json:"kind"`
	Appointment CanceledAppointment `json:"appointment"`
}

// EncodeCancellation serializes a payload for the queue.
func EncodeCancellation(p CancellationPayload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("jobs: failed to encode cancellation payload: %w", err)
	}
	return string(body), nil
}

// DecodeCancellation parses a queue message body. Messages of any other kind
// are rejected.
func DecodeCancellation(body string) (*CancellationPayload, error) {
	var p CancellationPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("jobs: failed to decode cancellation payload: %w", err)
	}
	if p.Kind != KindAppointmentCanceled {
		return nil, fmt.Errorf("jobs: unexpected message kind %q", p.Kind)
	}
	if p.JobID == "" {
		return nil, fmt.Errorf("jobs: cancellation payload missing job id")
	}
	return &p, nil
}
