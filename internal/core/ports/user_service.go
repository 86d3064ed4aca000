package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// ChangePasswordInput carries a self-service password change.
type ChangePasswordInput struct {
	UserID   int64
	Current  string
	Password string
}

// ListUsersInput carries the admin user listing parameters.
type ListUsersInput struct {
	Role   string
	Active *bool
	Search string
	Page   int
	Limit  int
}

// ListUsersResult is returned by ListUsers.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// SetUserFlagsInput carries an admin change to account flags. Nil fields are
// left untouched.
type SetUserFlagsInput struct {
	UserID   int64
	Active   *bool
	Verified *bool
}

// UserService defines account management use cases.
type UserService interface {
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	// ChangePassword verifies the current password before storing the new
	// hash, and cuts off every outstanding session.
	ChangePassword(ctx context.Context, input ChangePasswordInput) error
	ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	SetUserFlags(ctx context.Context, input SetUserFlagsInput) (*domain.User, error)
}
