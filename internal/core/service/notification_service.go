package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/api/metrics"
	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

type NotificationService struct {
	repo      ports.NotificationRepository
	publisher ports.NotificationPublisher
	logger    zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, publisher ports.NotificationPublisher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, logger: logger}
}

// Deliver persists a notification to the recipient's inbox and hands it to
// the external broker. The inbox write is authoritative; a broker failure is
// logged and counted but does not fail the delivery.
func (s *NotificationService) Deliver(ctx context.Context, n domain.Notification) error {
	if err := s.repo.Insert(ctx, &n); err != nil {
		metrics.NotificationsErrorsTotal.WithLabelValues("persist_failed").Inc()
		s.logger.Error().Err(err).Str("ref", n.Ref).Int64("recipient_id", n.RecipientID).Msg("notification persist failed")
		return err
	}

	if err := s.publisher.Publish(ctx, &n); err != nil {
		metrics.NotificationsErrorsTotal.WithLabelValues("publish_failed").Inc()
		s.logger.Error().Err(err).Str("ref", n.Ref).Msg("notification publish failed")
	}

	metrics.NotificationsDeliveredTotal.WithLabelValues(string(n.Type)).Inc()
	s.logger.Debug().Str("ref", n.Ref).Int64("recipient_id", n.RecipientID).Str("type", string(n.Type)).Msg("notification delivered")
	return nil
}

// List returns a page of the caller's inbox, newest first.
func (s *NotificationService) List(ctx context.Context, input ports.ListNotificationsInput) (*ports.ListNotificationsResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	items, total, err := s.repo.List(ctx, ports.ListNotificationsFilter{
		RecipientID: input.RecipientID,
		UnreadOnly:  input.UnreadOnly,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListNotificationsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, ref string, recipientID int64) error {
	return s.repo.MarkRead(ctx, ref, recipientID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}
