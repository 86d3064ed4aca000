package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/api/metrics"
	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements registration, login and the refresh token protocol.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.CredentialHasher
	tokens ports.TokenService
	guard  ports.ReplayGuard
	cache  ports.IdentityCache
	logger zerolog.Logger

	// dummyHash is verified against whenever the submitted email matches no
	// account, so a login attempt costs one hash verification whether or not
	// the account exists. Computed once from random input at construction;
	// no submitted password can ever match it.
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.CredentialHasher,
	tokens ports.TokenService,
	guard ports.ReplayGuard,
	cache ports.IdentityCache,
	logger zerolog.Logger,
) (*AuthService, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("auth service: dummy seed: %w", err)
	}
	dummy, err := hasher.Hash(hex.EncodeToString(seed))
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		guard:     guard,
		cache:     cache,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Register creates an account. Admin accounts are provisioned operationally
// and cannot be self-registered.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	role, ok := domain.ParseRole(input.Role)
	if email == "" || !ok || role == domain.RoleAdmin {
		return nil, domain.ErrInvalidInput
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("account registered")
	return created, nil
}

// Login verifies credentials and issues a token pair. Unknown email, wrong
// password and inactive account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
	user, upgraded, err := s.authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			s.logger.Warn().Str("email", normalizeEmail(email)).Msg("login rejected")
		}
		return nil, nil, err
	}

	if upgraded != "" {
		s.persistUpgradedHash(ctx, user, upgraded)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int64("user_id", user.ID).Msg("login succeeded")
	return pair, user, nil
}

// Refresh redeems a refresh token for a fresh pair. Each token id is
// redeemable exactly once; redeeming one twice is treated as theft of the
// token and revokes every outstanding refresh token of the subject.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	// Token timestamps carry second precision, so the guard reports fences
	// rounded up to a whole second and anything issued strictly before the
	// fence is out.
	fence, err := s.guard.RevokedAt(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !fence.IsZero() && claims.IssuedAt.Before(fence) {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrTokenRevoked
	}

	// Fast-path lookup, then the atomic claim. Under concurrent redemption
	// both callers pass IsUsed but only one wins MarkUsed.
	used, err := s.guard.IsUsed(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, s.replayDetected(ctx, claims)
	}
	first, err := s.guard.MarkUsed(ctx, claims.ID, s.tokens.RefreshTTL())
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, s.replayDetected(ctx, claims)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if !user.Active {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrBadCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int64("user_id", user.ID).Str("jti", claims.ID).Msg("refresh token rotated")
	return pair, nil
}

// Logout retires a refresh token. Retiring an already-retired token is a
// no-op, so clients can call it safely on shutdown races.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	if _, err := s.guard.MarkUsed(ctx, claims.ID, s.tokens.RefreshTTL()); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", claims.UserID).Str("jti", claims.ID).Msg("refresh token retired")
	return nil
}

// authenticate resolves the account and checks the password. It performs
// exactly one hash verification on every path: when the email matches no
// account the submitted password is verified against the precomputed dummy
// hash, and the active flag is only consulted after verification. The single
// rejection reason keeps response timing and shape uniform.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	stored := s.dummyHash
	if user != nil {
		stored = user.PasswordHash
	}
	ok, upgraded := s.hasher.Verify(password, stored)

	if user == nil || !ok || !user.Active {
		return nil, "", domain.ErrBadCredentials
	}
	return user, upgraded, nil
}

// persistUpgradedHash stores a rehashed credential produced during login.
// Failure is logged and swallowed: the password already verified, and the
// upgrade will be retried on the next login.
func (s *AuthService) persistUpgradedHash(ctx context.Context, user *domain.User, upgraded string) {
	from := "bcrypt"
	if strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		from = "argon2id"
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, upgraded); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("password hash upgrade not persisted")
		return
	}
	if err := s.cache.Invalidate(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("identity cache invalidation failed")
	}

	metrics.PasswordHashUpgradesTotal.WithLabelValues(from).Inc()
	s.logger.Info().Int64("user_id", user.ID).Str("from", from).Msg("password hash upgraded")
}

// replayDetected handles a second redemption of a refresh token id. The
// whole subject lineage is revoked, the event is counted and logged on its
// own channel, and the caller still receives only the generic rejection.
func (s *AuthService) replayDetected(ctx context.Context, claims *ports.TokenClaims) error {
	if err := s.guard.RevokeSubject(ctx, claims.UserID, s.tokens.RefreshTTL()); err != nil {
		s.logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("subject revocation failed after replay")
	}

	metrics.TokenRefreshTotal.WithLabelValues("replay").Inc()
	metrics.TokenReplaysTotal.Inc()
	s.logger.Warn().
		Int64("user_id", claims.UserID).
		Str("jti", claims.ID).
		Time("token_issued_at", claims.IssuedAt).
		Msg("refresh token replay detected, subject revoked")

	return domain.ErrTokenReplayed
}

func (s *AuthService) issuePair(user *domain.User) (*ports.TokenPair, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
