package handler

import "github.com/shiftpool/marketplace-api/internal/core/domain"

// --- Request / Response types ---

type applyRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// decisionRequest carries the optional note on accept, reject and withdraw.
type decisionRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type listApplicationsResponse struct {
	Data       []*domain.Application `json:"data"`
	Pagination paginationResponse    `json:"pagination"`
}
