package domain

import "time"

// User is created on the first code request for an email address and is
// never deleted. Email is stored normalized (trimmed, lowercased) and is
// unique across the table.
type User struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created"`
}
