package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// ListUsersFilter carries the query parameters for the admin user listing.
type ListUsersFilter struct {
	Role   string // optional: filter by role
	Active *bool  // optional: filter by active flag
	Search string // optional: partial match on email
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// UserFlagsUpdate holds the optional account flags an admin may change.
// Nil fields are left untouched.
type UserFlagsUpdate struct {
	Active   *bool
	Verified *bool
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create persists a new user and returns it with its allocated numeric ID.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// UpdatePasswordHash replaces the stored hash, used both for password
	// changes and for transparent rehash-on-login upgrades.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	UpdateFlags(ctx context.Context, id int64, update UserFlagsUpdate) (*domain.User, error)
	// List returns a page of users matching filter and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}
