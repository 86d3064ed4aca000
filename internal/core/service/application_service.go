package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/api/metrics"
	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
	"github.com/shiftpool/marketplace-api/pkg/reference"
)

const (
	applicationRefPrefix  = "APP"
	notificationRefPrefix = "NTF"
)

type ApplicationService struct {
	apps   ports.ApplicationRepository
	shifts ports.ShiftRepository
	queue  ports.NotificationQueue
	logger zerolog.Logger
}

func NewApplicationService(
	apps ports.ApplicationRepository,
	shifts ports.ShiftRepository,
	queue ports.NotificationQueue,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{apps: apps, shifts: shifts, queue: queue, logger: logger}
}

// Apply submits a staff member's bid for an open shift. Only verified staff
// accounts may apply. One application per shift and applicant; a second
// attempt is rejected.
func (s *ApplicationService) Apply(ctx context.Context, input ports.ApplyInput) (*domain.Application, error) {
	if !domain.CanApply(input.Role) || !input.Verified {
		return nil, domain.ErrPermissionDenied
	}

	shift, err := s.shifts.FindByRef(ctx, input.ShiftRef)
	if err != nil {
		return nil, err
	}
	if !shift.Open {
		return nil, domain.ErrShiftClosed
	}

	if _, err := s.apps.FindByShiftAndApplicant(ctx, shift.Ref, input.ActorID); err == nil {
		return nil, domain.ErrDuplicateApplication
	} else if !errors.Is(err, domain.ErrApplicationNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	app := &domain.Application{
		Ref:          reference.New(applicationRefPrefix),
		ShiftRef:     shift.Ref,
		ShiftOwnerID: shift.OwnerID,
		ApplicantID:  input.ActorID,
		Note:         input.Note,
		Status:       domain.ApplicationPending,
		Decisions: []domain.DecisionEntry{
			{Status: domain.ApplicationPending, ActorID: input.ActorID, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The repository holds a unique index on (shift_ref, applicant_id), so a
	// concurrent duplicate loses here even after passing the lookup above.
	if err := s.apps.Create(ctx, app); err != nil {
		s.logger.Error().Err(err).Str("shift_ref", shift.Ref).Msg("failed to create application")
		return nil, err
	}

	metrics.ApplicationsCreatedTotal.Inc()
	s.logger.Info().
		Str("ref", app.Ref).
		Str("shift_ref", shift.Ref).
		Int64("applicant_id", input.ActorID).
		Msg("application submitted")

	s.queue.Enqueue(domain.Notification{
		Ref:            reference.New(notificationRefPrefix),
		RecipientID:    shift.OwnerID,
		Type:           domain.NotificationApplicationReceived,
		ApplicationRef: app.Ref,
		ShiftRef:       shift.Ref,
		Message:        "New application for \"" + shift.Title + "\"",
		CreatedAt:      now,
	})

	return app, nil
}

// GetApplication returns one application. Accounts with no relation to it
// are told it does not exist.
func (s *ApplicationService) GetApplication(ctx context.Context, input ports.GetApplicationInput) (*domain.Application, error) {
	app, err := s.apps.FindByRef(ctx, input.Ref)
	if err != nil {
		return nil, err
	}
	if !domain.CanReadApplication(input.Role, app.RelationTo(input.ActorID)) {
		return nil, domain.ErrApplicationNotFound
	}
	return app, nil
}

// ListApplications returns a page of applications scoped by the caller's
// role: admins see everything, business accounts see applications against
// their shifts, staff see their own bids.
func (s *ApplicationService) ListApplications(ctx context.Context, input ports.ListApplicationsInput) (*ports.ListApplicationsResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	filter := ports.ListApplicationsFilter{
		ShiftRef: input.ShiftRef,
		Status:   input.Status,
		Page:     page,
		Limit:    limit,
	}
	switch {
	case input.Role == domain.RoleAdmin:
		// Unscoped.
	case input.Role.Business():
		filter.OwnerID = input.ActorID
	default:
		filter.ApplicantID = input.ActorID
	}

	items, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.ListApplicationsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Transition moves an application to a new status. The authorization gate
// decides from role and relation alone; the storage update is conditioned on
// the observed status so concurrent decisions cannot both win.
func (s *ApplicationService) Transition(ctx context.Context, input ports.TransitionApplicationInput) (*domain.Application, error) {
	if !input.To.Valid() {
		return nil, domain.ErrInvalidInput
	}

	app, err := s.apps.FindByRef(ctx, input.Ref)
	if err != nil {
		return nil, err
	}

	rel := app.RelationTo(input.ActorID)
	if !domain.CanReadApplication(input.Role, rel) {
		return nil, domain.ErrApplicationNotFound
	}
	if err := domain.CanTransitionApplication(input.Role, rel, app.Status, input.To); err != nil {
		return nil, err
	}

	entry := domain.DecisionEntry{
		Status:    input.To,
		ActorID:   input.ActorID,
		Timestamp: time.Now().UTC(),
		Note:      input.Note,
	}
	updated, err := s.apps.UpdateStatus(ctx, app.Ref, app.Status, input.To, entry)
	if err != nil {
		return nil, err
	}

	metrics.ApplicationTransitionsTotal.WithLabelValues(string(input.To)).Inc()
	s.logger.Info().
		Str("ref", app.Ref).
		Str("from", string(app.Status)).
		Str("to", string(input.To)).
		Int64("actor_id", input.ActorID).
		Msg("application transitioned")

	if n, ok := transitionNotification(updated, input.To); ok {
		s.queue.Enqueue(n)
	}
	return updated, nil
}

// transitionNotification maps a transition to the inbox entry for the party
// that did not act: decisions go to the applicant, withdrawals to the owner.
func transitionNotification(app *domain.Application, to domain.ApplicationStatus) (domain.Notification, bool) {
	n := domain.Notification{
		Ref:            reference.New(notificationRefPrefix),
		ApplicationRef: app.Ref,
		ShiftRef:       app.ShiftRef,
		CreatedAt:      time.Now().UTC(),
	}

	switch to {
	case domain.ApplicationAccepted:
		n.RecipientID = app.ApplicantID
		n.Type = domain.NotificationApplicationAccepted
		n.Message = "Your application was accepted"
	case domain.ApplicationRejected:
		n.RecipientID = app.ApplicantID
		n.Type = domain.NotificationApplicationRejected
		n.Message = "Your application was rejected"
	case domain.ApplicationWithdrawn:
		n.RecipientID = app.ShiftOwnerID
		n.Type = domain.NotificationApplicationWithdrawn
		n.Message = "An application was withdrawn"
	default:
		return domain.Notification{}, false
	}
	return n, true
}
