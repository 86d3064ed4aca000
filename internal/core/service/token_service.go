package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// tokenClaims is the JWT payload shared by both token kinds. Kind is
// mandatory; a token without it never verifies.
type tokenClaims struct {
	Email string          `json:"email,omitempty"`
	Role  domain.Role     `json:"role,omitempty"`
	Kind  ports.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens. Access and refresh tokens
// are signed with distinct secrets, so neither family can be presented where
// the other is expected even if the kind claim were stripped.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService validates the secret pair and applies TTL defaults
// (15 minutes access, 30 days refresh).
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token service: both signing secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("token service: access and refresh secrets must differ")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (s *TokenService) IssueAccess(user *domain.User) (string, error) {
	return s.sign(user, ports.TokenKindAccess, s.accessTTL, s.accessSecret)
}

func (s *TokenService) IssueRefresh(user *domain.User) (string, error) {
	return s.sign(user, ports.TokenKindRefresh, s.refreshTTL, s.refreshSecret)
}

func (s *TokenService) VerifyAccess(raw string) (*ports.TokenClaims, error) {
	return s.verify(raw, ports.TokenKindAccess, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(raw string) (*ports.TokenClaims, error) {
	return s.verify(raw, ports.TokenKindRefresh, s.refreshSecret)
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) sign(user *domain.User, kind ports.TokenKind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// verify parses and validates a raw token against one secret and one
// expected kind. Every parse or validation failure collapses into the
// domain token errors; callers must not leak anything finer to clients.
func (s *TokenService) verify(raw string, kind ports.TokenKind, secret []byte) (*ports.TokenClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}

	if claims.Kind != kind {
		return nil, domain.ErrTokenWrongKind
	}
	if claims.ID == "" || claims.IssuedAt == nil {
		return nil, domain.ErrTokenMalformed
	}
	if !claims.Role.Valid() {
		return nil, domain.ErrTokenMalformed
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, domain.ErrTokenMalformed
	}

	return &ports.TokenClaims{
		UserID:    userID,
		Email:     claims.Email,
		Role:      claims.Role,
		Kind:      claims.Kind,
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
