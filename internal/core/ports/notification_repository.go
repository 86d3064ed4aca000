package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// ListNotificationsFilter carries the query parameters for a user's inbox.
type ListNotificationsFilter struct {
	RecipientID int64 // always set; users only ever see their own inbox
	UnreadOnly  bool
	Page        int
	Limit       int
}

// NotificationRepository defines persistence operations for the notification inbox.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	// List returns a page of notifications for one recipient, newest first,
	// and the total count.
	List(ctx context.Context, filter ListNotificationsFilter) ([]*domain.Notification, int64, error)
	// MarkRead flips the read flag. The recipient scope is part of the match
	// so users cannot touch other inboxes.
	MarkRead(ctx context.Context, ref string, recipientID int64) error
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
}
