package domain

import "time"

// AuthCode is a single-use numeric login code delivered to the user by
// email. Rows are append-only: the only mutation ever applied is the
// used=false -> used=true transition on successful verification. A user
// may have any number of outstanding codes; issuing a new code does not
// invalidate earlier ones.
type AuthCode struct {
	CodeID    string    `json:"id"`
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the code can still be consumed at the given instant.
func (c *AuthCode) Valid(now time.Time) bool {
	return !c.Used && c.ExpiresAt.After(now)
}
