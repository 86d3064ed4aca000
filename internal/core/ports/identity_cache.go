package ports

import (
	"context"
	"time"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// IdentityCache is a short-lived read-through cache in front of the user
// store, consulted on every authenticated request. Mutations to an account
// must Invalidate it so flag and password changes take effect within one
// request, not one TTL.
type IdentityCache interface {
	// Get returns the cached user, or (nil, nil) on a miss.
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Invalidate(ctx context.Context, id int64) error
}
