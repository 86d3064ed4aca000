package handler

import (
	"time"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// --- Request / Response types ---

// shiftRequest is shared by create and update; both replace the full set of
// mutable fields.
type shiftRequest struct {
	Title      string    `json:"title"       validate:"required"`
	Location   string    `json:"location"    validate:"required"`
	RateAmount int64     `json:"rate_amount" validate:"required,gt=0"`
	Currency   string    `json:"currency"    validate:"required,len=3"`
	StartsAt   time.Time `json:"starts_at"   validate:"required"`
	EndsAt     time.Time `json:"ends_at"     validate:"required,gtfield=StartsAt"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listShiftsResponse struct {
	Data       []*domain.Shift    `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
