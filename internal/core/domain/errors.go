package domain

import "errors"

// Authentication failure taxonomy. The API layer collapses every one of
// these into a single undifferentiated 401 so a caller cannot learn which
// check rejected the request; the distinction exists for logs and metrics
// only. ErrTokenReplayed additionally marks possible token theft and is
// logged and counted separately server-side.
var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenWrongKind = errors.New("token kind mismatch")
	ErrTokenReplayed  = errors.New("refresh token replayed")
	ErrTokenRevoked   = errors.New("token revoked")
)

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrEmailTaken           = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrShiftNotFound        = errors.New("shift not found")
	ErrShiftClosed          = errors.New("shift is closed")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("shift already applied to")
	ErrNotificationNotFound = errors.New("notification not found")
)

// IsAuthFailure reports whether err belongs to the authentication taxonomy.
// Every member maps to the same HTTP response.
func IsAuthFailure(err error) bool {
	for _, target := range []error{
		ErrBadCredentials,
		ErrTokenExpired,
		ErrTokenMalformed,
		ErrTokenWrongKind,
		ErrTokenReplayed,
		ErrTokenRevoked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
