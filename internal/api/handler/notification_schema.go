package handler

import "github.com/shiftpool/marketplace-api/internal/core/domain"

// --- Response types ---

type listNotificationsResponse struct {
	Data       []*domain.Notification `json:"data"`
	Pagination paginationResponse     `json:"pagination"`
}

type unreadCountResponse struct {
	Unread int64 `json:"unread"`
}
