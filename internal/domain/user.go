package domain

import (
	"context"
	"time"
)

// User is an identity-provider account mirrored into the local store.
// The ID is issued by the provider and never generated locally.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Upsert inserts the user or overwrites email, name and image of an existing row.
	Upsert(ctx context.Context, user *User) (*User, error)
	// Delete returns ErrUserNotFound when no row was removed.
	Delete(ctx context.Context, id string) error
}
