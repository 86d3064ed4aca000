package ports

import (
	"time"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// TokenKind discriminates the two token families. Every token carries its
// kind as a claim and each verifier accepts exactly one kind, so an access
// token can never pass where a refresh token is expected or vice versa.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the verified content of a token, independent of the wire
// format.
type TokenClaims struct {
	UserID    int64
	Email     string
	Role      domain.Role
	Kind      TokenKind
	ID        string // unique token id (jti); redemption tracking keys on it
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies the two token families. Access and
// refresh tokens are signed with distinct secrets; a token signed with one
// never verifies under the other.
type TokenService interface {
	IssueAccess(user *domain.User) (string, error)
	IssueRefresh(user *domain.User) (string, error)
	// VerifyAccess validates an access token. Any failure surfaces as one of
	// the domain token errors.
	VerifyAccess(raw string) (*TokenClaims, error)
	// VerifyRefresh validates a refresh token.
	VerifyRefresh(raw string) (*TokenClaims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
