// Package models defines the core data structures for users, tasks and
// session claims.
package models

import "time"

const (
	// MaxUsernameLength is the longest username accepted at registration.
	MaxUsernameLength = 50
	// MaxTaskNameLength is the longest task name accepted on create and update.
	MaxTaskNameLength = 100
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`
}

// Task is a single to-do record.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`
	// Name is the free-form task title.
	Name string `json:"name"`
	// IsComplete reports whether the task has been done.
	IsComplete bool `json:"isComplete"`
}

// Claims is the identity carried by a verified session token.
type Claims struct {
	// TokenID is the unique id (jti) of the token the claims were read from.
	TokenID string
	// UserID is the identifier of the authenticated user.
	UserID string
	// Username is the token subject.
	Username string
	// ExpiresAt is the absolute expiry of the token.
	ExpiresAt time.Time
}
