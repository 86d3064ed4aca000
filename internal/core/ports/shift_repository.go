package ports

import (
	"context"
	"time"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// ListShiftsFilter carries all query parameters for listing shifts.
// OwnerID is enforced by the service layer when the caller asks for
// their own postings.
type ListShiftsFilter struct {
	OwnerID  int64     // 0 = no filter; non-zero = scoped to owner
	Open     *bool     // optional: filter by open flag
	Location string    // optional: exact match on location
	Search   string    // optional: partial match on title or location
	From     time.Time // optional: starts_at >= From
	To       time.Time // optional: starts_at <= To
	Page     int       // 1-based
	Limit    int       // max rows per page (capped at 100 by service)
}

// ShiftRepository defines persistence operations for shift postings.
type ShiftRepository interface {
	Create(ctx context.Context, s *domain.Shift) error
	FindByRef(ctx context.Context, ref string) (*domain.Shift, error)
	// Update replaces the mutable fields of the shift identified by s.Ref.
	Update(ctx context.Context, s *domain.Shift) error
	// List returns a page of shifts matching filter and the total count.
	List(ctx context.Context, filter ListShiftsFilter) ([]*domain.Shift, int64, error)
}
