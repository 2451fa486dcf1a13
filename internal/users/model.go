package users

import "time"

// User represents an account. Providers are users with the provider flag set;
// only they can be booked.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Provider  bool      `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the nested representation exposed on appointment payloads.
type Summary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Summary returns the public subset of the user.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
