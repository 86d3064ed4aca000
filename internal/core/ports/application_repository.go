package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// ListApplicationsFilter carries all query parameters for listing applications.
// OwnerID and ApplicantID are the two scoping axes the service layer sets
// from the caller's role.
type ListApplicationsFilter struct {
	ShiftRef    string // optional: only applications for this shift
	OwnerID     int64  // 0 = no filter; non-zero = scoped to shift owner
	ApplicantID int64  // 0 = no filter; non-zero = scoped to applicant
	Status      string // optional: filter by application status
	Page        int    // 1-based
	Limit       int    // max rows per page (capped at 100 by service)
}

// ApplicationRepository defines persistence operations for shift applications.
type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	FindByRef(ctx context.Context, ref string) (*domain.Application, error)
	// FindByShiftAndApplicant locates an existing application for the pair,
	// used to reject duplicate bids.
	FindByShiftAndApplicant(ctx context.Context, shiftRef string, applicantID int64) (*domain.Application, error)
	// UpdateStatus atomically sets the new status and appends a decision
	// entry. The write is conditioned on the current status being from, so
	// two concurrent decisions cannot both win; the loser gets
	// domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, ref string, from, to domain.ApplicationStatus, entry domain.DecisionEntry) (*domain.Application, error)
	// List returns a page of applications matching filter and the total count.
	List(ctx context.Context, filter ListApplicationsFilter) ([]*domain.Application, int64, error)
}
