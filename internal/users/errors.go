package users

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the id
	ErrUserNotFound = errors.New("user not found")
)
