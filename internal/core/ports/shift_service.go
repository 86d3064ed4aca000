package ports

import (
	"context"
	"time"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// CreateShiftInput carries all data needed to post a new shift.
type CreateShiftInput struct {
	ActorID  int64
	Role     domain.Role
	Title    string
	Location string
	// RateAmount is the hourly rate in the currency's minor unit.
	RateAmount int64
	Currency   string
	StartsAt   time.Time
	EndsAt     time.Time
}

// UpdateShiftInput replaces the mutable fields of an existing shift.
type UpdateShiftInput struct {
	Ref        string
	ActorID    int64
	Role       domain.Role
	Title      string
	Location   string
	RateAmount int64
	Currency   string
	StartsAt   time.Time
	EndsAt     time.Time
}

// CloseShiftInput carries the parameters for closing a shift to new applications.
type CloseShiftInput struct {
	Ref     string
	ActorID int64
	Role    domain.Role
}

// ListShiftsInput carries all parameters for the shift listing endpoint.
type ListShiftsInput struct {
	ActorID int64
	Role    domain.Role
	// Mine scopes the listing to the caller's own postings and lifts the
	// open-only default, letting owners see their closed shifts.
	Mine     bool
	Open     *bool
	Location string
	Search   string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

// ListShiftsResult is returned by ListShifts.
type ListShiftsResult struct {
	Items      []*domain.Shift
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ShiftService defines use-case operations for shift postings.
type ShiftService interface {
	CreateShift(ctx context.Context, input CreateShiftInput) (*domain.Shift, error)
	GetShift(ctx context.Context, ref string) (*domain.Shift, error)
	ListShifts(ctx context.Context, input ListShiftsInput) (*ListShiftsResult, error)
	UpdateShift(ctx context.Context, input UpdateShiftInput) (*domain.Shift, error)
	CloseShift(ctx context.Context, input CloseShiftInput) (*domain.Shift, error)
}
