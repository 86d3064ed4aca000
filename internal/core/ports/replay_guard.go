package ports

import (
	"context"
	"time"
)

// ReplayGuard tracks redeemed refresh token IDs and per-subject revocation
// fences. Entries only need to outlive the refresh token lifetime; the
// implementation expires them with the ttl passed by the caller.
type ReplayGuard interface {
	// IsUsed reports whether jti has already been redeemed.
	IsUsed(ctx context.Context, jti string) (bool, error)
	// MarkUsed records jti as redeemed and reports whether this caller was
	// the first to do so. The check and the write are a single atomic step,
	// so exactly one of any number of concurrent callers sees first=true.
	MarkUsed(ctx context.Context, jti string, ttl time.Duration) (first bool, err error)
	// RevokeSubject sets the revocation fence for userID to the current
	// time. Refresh tokens issued before the fence are rejected.
	RevokeSubject(ctx context.Context, userID int64, ttl time.Duration) error
	// RevokedAt returns the revocation fence for userID, or the zero time
	// when no fence is set.
	RevokedAt(ctx context.Context, userID int64) (time.Time, error)
}
