package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const defaultIdentityTTL = time.Minute

// IdentityService resolves the live account behind a verified token. The
// short cache keeps per-request lookups off the primary store; account
// mutations invalidate it, so deactivations and password changes surface on
// the next request rather than after a TTL.
type IdentityService struct {
	users  ports.UserRepository
	cache  ports.IdentityCache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewIdentityService(users ports.UserRepository, cache ports.IdentityCache, ttl time.Duration, logger zerolog.Logger) *IdentityService {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityService{users: users, cache: cache, ttl: ttl, logger: logger}
}

// Resolve returns the account for userID, preferring the cache. Cache
// failures degrade to a store read.
func (s *IdentityService) Resolve(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("identity cache read failed")
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user, s.ttl); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("identity cache write failed")
	}
	return user, nil
}
