package domain

import "context"

// User is the subset of a user profile this service reads.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserDirectory looks up users owned by the user service.
type UserDirectory interface {
	ExistsUser(ctx context.Context, userID int64) (bool, error)
	// GetUser returns ErrUserNotFound when the user does not exist.
	GetUser(ctx context.Context, userID int64) (*User, error)
}
