package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// TokenPair is the credential set returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // always "bearer"
	ExpiresIn    int64  // access token lifetime in seconds
}

// AuthService defines the authentication use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login verifies credentials and issues a token pair. Every failure
	// mode (unknown email, wrong password, inactive account) returns
	// domain.ErrBadCredentials.
	Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error)
	// Refresh redeems a refresh token for a fresh pair. Each token is
	// redeemable once; a second redemption revokes the whole subject.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout retires a refresh token so it cannot be redeemed later.
	Logout(ctx context.Context, refreshToken string) error
}
