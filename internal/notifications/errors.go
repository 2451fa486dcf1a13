package notifications

import "errors"

var (
	// ErrNotFound is returned when a notification id does not exist.
	ErrNotFound = errors.New("notification not found")

	// ErrNotProvider is returned when a non-provider asks for notifications.
	ErrNotProvider = errors.New("only providers can load notifications")

	// ErrForbidden is returned when a user touches another user's notification.
	ErrForbidden = errors.New("notification belongs to another user")
)
