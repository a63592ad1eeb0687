package user

import (
	"context"
	"time"
)

// Repository is the persistence port for profile documents (users/{uid}).
type Repository interface {
	// GetByID returns ErrNotFound when the profile document does not exist.
	GetByID(ctx context.Context, id string) (User, error)

	// Create writes a new profile; ErrConflict when it already exists.
	Create(ctx context.Context, u User) (User, error)

	// Merge writes only the given fields (set with merge).
	Merge(ctx context.Context, id string, fields MergeFields) error

	// FindByEmail returns ErrNotFound when no profile carries that email.
	FindByEmail(ctx context.Context, email string) (User, error)

	// SetRole updates the role field only.
	SetRole(ctx context.Context, id string, role Role) error
}

// MergeFields is the profile-update write set.
type MergeFields struct {
	Name      string
	Nickname  string
	Avatar    string
	Email     string
	UpdatedAt time.Time
}
