package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

type UserService struct {
	users  ports.UserRepository
	hasher ports.CredentialHasher
	guard  ports.ReplayGuard
	cache  ports.IdentityCache
	tokens ports.TokenService
	logger zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	hasher ports.CredentialHasher,
	guard ports.ReplayGuard,
	cache ports.IdentityCache,
	tokens ports.TokenService,
	logger zerolog.Logger,
) *UserService {
	return &UserService{users: users, hasher: hasher, guard: guard, cache: cache, tokens: tokens, logger: logger}
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ChangePassword verifies the current password, stores the new hash, and
// cuts off every outstanding session: the cached identity is dropped and all
// refresh tokens issued so far are fenced out.
func (s *UserService) ChangePassword(ctx context.Context, input ports.ChangePasswordInput) error {
	if len(input.Password) < minPasswordLength {
		return domain.ErrInvalidInput
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if ok, _ := s.hasher.Verify(input.Current, user.PasswordHash); !ok {
		return domain.ErrBadCredentials
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("identity cache invalidation failed")
	}
	if err := s.guard.RevokeSubject(ctx, user.ID, s.tokens.RefreshTTL()); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("session revocation failed after password change")
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password changed, sessions revoked")
	return nil
}

// ListUsers returns a page of accounts. Reaching this operation at all is
// restricted to admins by the route.
func (s *UserService) ListUsers(ctx context.Context, input ports.ListUsersInput) (*ports.ListUsersResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	items, total, err := s.users.List(ctx, ports.ListUsersFilter{
		Role:   input.Role,
		Active: input.Active,
		Search: input.Search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// SetUserFlags updates account flags. Deactivation also revokes the
// account's refresh tokens so the lockout takes effect within one access
// token lifetime.
func (s *UserService) SetUserFlags(ctx context.Context, input ports.SetUserFlagsInput) (*domain.User, error) {
	if input.Active == nil && input.Verified == nil {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.users.UpdateFlags(ctx, input.UserID, ports.UserFlagsUpdate{
		Active:   input.Active,
		Verified: input.Verified,
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, updated.ID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", updated.ID).Msg("identity cache invalidation failed")
	}
	if input.Active != nil && !*input.Active {
		if err := s.guard.RevokeSubject(ctx, updated.ID, s.tokens.RefreshTTL()); err != nil {
			s.logger.Error().Err(err).Int64("user_id", updated.ID).Msg("session revocation failed after deactivation")
		}
	}

	s.logger.Info().Int64("user_id", updated.ID).Bool("active", updated.Active).Bool("verified", updated.Verified).Msg("account flags updated")
	return updated, nil
}
