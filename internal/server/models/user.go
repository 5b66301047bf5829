// Package models contains the persistent data structures shared by the
// repositories and services.
package models

import "time"

// User is an account record. Identity is immutable once created; the
// username is the subject embedded in access tokens. Passwords are stored
// only as bcrypt hashes.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
