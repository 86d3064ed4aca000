package ports

import (
	"context"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// NotificationQueue decouples application decisions from notification
// delivery. Enqueue must not block the request path beyond buffer capacity.
type NotificationQueue interface {
	Enqueue(n domain.Notification)
}

// NotificationPublisher pushes persisted notifications to the external
// broker for delivery channels (email, push) operated outside this service.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// ListNotificationsInput carries the inbox listing parameters.
type ListNotificationsInput struct {
	RecipientID int64
	UnreadOnly  bool
	Page        int
	Limit       int
}

// ListNotificationsResult is returned by List.
type ListNotificationsResult struct {
	Items      []*domain.Notification
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NotificationService persists and serves the per-user notification inbox.
// Deliver is the queue worker entry point; the rest back the inbox endpoints.
type NotificationService interface {
	Deliver(ctx context.Context, n domain.Notification) error
	List(ctx context.Context, input ListNotificationsInput) (*ListNotificationsResult, error)
	MarkRead(ctx context.Context, ref string, recipientID int64) error
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
}
