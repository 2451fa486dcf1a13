package notifications

import "time"

// Notification is a provider-facing booking notice stored in Redis.
type Notification struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
