package domain

import "time"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User is a registered account. PasswordHash holds the bcrypt digest and is
// never serialised.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
