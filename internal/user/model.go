package user

import "time"

// Profile is a user's public identity on the marketplace
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email,omitempty"`
	Password   string    `json:"-"` // never return
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"` // student, client, admin
	University string    `json:"university,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
