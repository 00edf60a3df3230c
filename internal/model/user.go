// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// HashedPassword holds the argon2id PHC string, never the plaintext.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
