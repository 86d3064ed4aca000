package handler

import "github.com/shiftpool/marketplace-api/internal/core/domain"

// --- Request / Response types ---

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// userFlagsRequest uses pointers so absent fields are left untouched.
type userFlagsRequest struct {
	Active   *bool `json:"active"`
	Verified *bool `json:"verified"`
}

type listUsersResponse struct {
	Data       []*domain.User     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
