package appointments

import "errors"

var (
	// ErrInvalidProvider is returned when the target user is not a provider
	ErrInvalidProvider = errors.New("appointments can only be created with providers")

	// ErrPastDate is returned when the requested slot is already in the past
	ErrPastDate = errors.New("past dates are not permitted")

	// ErrSlotTaken is returned when the provider already has an active appointment in the slot
	ErrSlotTaken = errors.New("appointment date is not available")

	// ErrNotFound is returned when no appointment matches the id
	ErrNotFound = errors.New("appointment not found")

	// ErrForbidden is returned when the caller does not own the appointment
	ErrForbidden = errors.New("appointment belongs to another user")

	// ErrAlreadyCanceled is returned when the appointment was canceled before
	ErrAlreadyCanceled = errors.New("appointment is already canceled")

	// ErrCancellationWindow is returned when the cancellation window has closed
	ErrCancellationWindow = errors.New("appointments can only be canceled ahead of the cancellation window")

	// ErrNotProvider is returned when a provider-only operation is called by a regular user
	ErrNotProvider = errors.New("only providers can load their schedule")

	// ErrInvalidDate is returned when the booking request carries no usable date
	ErrInvalidDate = errors.New("a valid date is required")
)
