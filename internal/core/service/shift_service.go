package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/api/metrics"
	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
	"github.com/shiftpool/marketplace-api/pkg/reference"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	shiftRefPrefix = "SHF"
)

type ShiftService struct {
	repo   ports.ShiftRepository
	logger zerolog.Logger
}

func NewShiftService(repo ports.ShiftRepository, logger zerolog.Logger) *ShiftService {
	return &ShiftService{repo: repo, logger: logger}
}

// CreateShift posts a new shift owned by the acting account.
func (s *ShiftService) CreateShift(ctx context.Context, input ports.CreateShiftInput) (*domain.Shift, error) {
	if !domain.CanPostShift(input.Role) {
		return nil, domain.ErrPermissionDenied
	}
	if err := validateShiftFields(input.Title, input.Location, input.RateAmount, input.Currency, input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shift := &domain.Shift{
		Ref:      reference.New(shiftRefPrefix),
		OwnerID:  input.ActorID,
		Title:    strings.TrimSpace(input.Title),
		Location: strings.TrimSpace(input.Location),
		HourlyRate: domain.Money{
			Amount:   input.RateAmount,
			Currency: strings.ToUpper(input.Currency),
		},
		StartsAt:  input.StartsAt.UTC(),
		EndsAt:    input.EndsAt.UTC(),
		Open:      true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, shift); err != nil {
		s.logger.Error().Err(err).Msg("failed to create shift")
		return nil, err
	}

	metrics.ShiftsCreatedTotal.Inc()
	s.logger.Info().Str("ref", shift.Ref).Int64("owner_id", shift.OwnerID).Msg("shift posted")
	return shift, nil
}

// GetShift returns a shift by its public reference. Shift postings are
// visible to every authenticated account.
func (s *ShiftService) GetShift(ctx context.Context, ref string) (*domain.Shift, error) {
	return s.repo.FindByRef(ctx, ref)
}

// ListShifts returns a page of shifts. Browsing accounts only see open
// postings; owners asking for their own postings (and admins) see closed
// ones too.
func (s *ShiftService) ListShifts(ctx context.Context, input ports.ListShiftsInput) (*ports.ListShiftsResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	filter := ports.ListShiftsFilter{
		Open:     input.Open,
		Location: strings.TrimSpace(input.Location),
		Search:   strings.TrimSpace(input.Search),
		From:     input.From,
		To:       input.To,
		Page:     page,
		Limit:    limit,
	}
	if input.Mine {
		filter.OwnerID = input.ActorID
	} else if input.Role != domain.RoleAdmin && filter.Open == nil {
		open := true
		filter.Open = &open
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.ListShiftsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateShift replaces the mutable fields of an open shift.
func (s *ShiftService) UpdateShift(ctx context.Context, input ports.UpdateShiftInput) (*domain.Shift, error) {
	shift, err := s.repo.FindByRef(ctx, input.Ref)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageShift(input.Role, shift.OwnedBy(input.ActorID)) {
		return nil, domain.ErrPermissionDenied
	}
	if !shift.Open {
		return nil, domain.ErrShiftClosed
	}
	if err := validateShiftFields(input.Title, input.Location, input.RateAmount, input.Currency, input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	shift.Title = strings.TrimSpace(input.Title)
	shift.Location = strings.TrimSpace(input.Location)
	shift.HourlyRate = domain.Money{Amount: input.RateAmount, Currency: strings.ToUpper(input.Currency)}
	shift.StartsAt = input.StartsAt.UTC()
	shift.EndsAt = input.EndsAt.UTC()
	shift.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, shift); err != nil {
		s.logger.Error().Err(err).Str("ref", shift.Ref).Msg("failed to update shift")
		return nil, err
	}

	s.logger.Info().Str("ref", shift.Ref).Msg("shift updated")
	return shift, nil
}

// CloseShift stops a shift from accepting new applications. Existing
// applications are untouched.
func (s *ShiftService) CloseShift(ctx context.Context, input ports.CloseShiftInput) (*domain.Shift, error) {
	shift, err := s.repo.FindByRef(ctx, input.Ref)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageShift(input.Role, shift.OwnedBy(input.ActorID)) {
		return nil, domain.ErrPermissionDenied
	}
	if !shift.Open {
		return nil, domain.ErrShiftClosed
	}

	shift.Open = false
	shift.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, shift); err != nil {
		s.logger.Error().Err(err).Str("ref", shift.Ref).Msg("failed to close shift")
		return nil, err
	}

	s.logger.Info().Str("ref", shift.Ref).Msg("shift closed")
	return shift, nil
}

func validateShiftFields(title, location string, rateAmount int64, currency string, startsAt, endsAt time.Time) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(location) == "" {
		return domain.ErrInvalidInput
	}
	if rateAmount <= 0 || len(currency) != 3 {
		return domain.ErrInvalidInput
	}
	if startsAt.IsZero() || endsAt.IsZero() || !endsAt.After(startsAt) {
		return domain.ErrInvalidInput
	}
	return nil
}

// normalizePage applies the default and the cap shared by all listing
// endpoints.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
