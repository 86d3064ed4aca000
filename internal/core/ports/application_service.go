package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// ApplyInput carries a staff member's bid for a shift. Verified reflects the
// live account record; unverified staff cannot apply.
type ApplyInput struct {
	ShiftRef string
	ActorID  int64
	Role     domain.Role
	Verified bool
	Note     string
}

// TransitionApplicationInput carries a requested status change. The service
// runs it through the authorization gate before touching storage.
type TransitionApplicationInput struct {
	Ref     string
	ActorID int64
	Role    domain.Role
	To      domain.ApplicationStatus
	Note    string
}

// GetApplicationInput identifies an application and the actor asking for it.
type GetApplicationInput struct {
	Ref     string
	ActorID int64
	Role    domain.Role
}

// ListApplicationsInput carries all parameters for the application listing.
// The service derives the storage scope from Role: admins see everything,
// business accounts see applications against their shifts, staff see their own.
type ListApplicationsInput struct {
	ActorID  int64
	Role     domain.Role
	ShiftRef string
	Status   string
	Page     int
	Limit    int
}

// ListApplicationsResult is returned by ListApplications.
type ListApplicationsResult struct {
	Items      []*domain.Application
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ApplicationService defines use-case operations for shift applications.
type ApplicationService interface {
	Apply(ctx context.Context, input ApplyInput) (*domain.Application, error)
	GetApplication(ctx context.Context, input GetApplicationInput) (*domain.Application, error)
	ListApplications(ctx context.Context, input ListApplicationsInput) (*ListApplicationsResult, error)
	// Transition moves an application to a new status on behalf of an actor.
	Transition(ctx context.Context, input TransitionApplicationInput) (*domain.Application, error)
}
