package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubShiftRepo struct {
	mu        sync.Mutex
	byRef     map[string]*domain.Shift
	createErr error // if set, Create returns this error
}

func newStubShiftRepo() *stubShiftRepo {
	return &stubShiftRepo{byRef: make(map[string]*domain.Shift)}
}

func cloneShift(s *domain.Shift) *domain.Shift {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func (r *stubShiftRepo) Create(_ context.Context, s *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byRef[s.Ref] = cloneShift(s)
	return nil
}

func (r *stubShiftRepo) FindByRef(_ context.Context, ref string) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byRef[ref]; ok {
		return cloneShift(s), nil
	}
	return nil, domain.ErrShiftNotFound
}

func (r *stubShiftRepo) Update(_ context.Context, s *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byRef[s.Ref]; !ok {
		return domain.ErrShiftNotFound
	}
	r.byRef[s.Ref] = cloneShift(s)
	return nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubShiftRepo) List(_ context.Context, f ports.ListShiftsFilter) ([]*domain.Shift, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Shift
	for _, s := range r.byRef {
		if f.OwnerID != 0 && s.OwnerID != f.OwnerID {
			continue
		}
		if f.Open != nil && s.Open != *f.Open {
			continue
		}
		if f.Location != "" && s.Location != f.Location {
			continue
		}
		if f.Search != "" {
			titleMatch := strings.Contains(strings.ToLower(s.Title), strings.ToLower(f.Search))
			locMatch := strings.Contains(strings.ToLower(s.Location), strings.ToLower(f.Search))
			if !titleMatch && !locMatch {
				continue
			}
		}
		if !f.From.IsZero() && s.StartsAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && s.StartsAt.After(f.To) {
			continue
		}
		matched = append(matched, cloneShift(s))
	}

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Shift{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func shiftInput(actorID int64, role domain.Role) ports.CreateShiftInput {
	starts := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
	return ports.CreateShiftInput{
		ActorID:    actorID,
		Role:       role,
		Title:      "Evening bar shift",
		Location:   "Amsterdam",
		RateAmount: 1650,
		Currency:   "eur",
		StartsAt:   starts,
		EndsAt:     starts.Add(6 * time.Hour),
	}
}

// ---------------------------------------------------------------------------
// CreateShift
// ---------------------------------------------------------------------------

func TestShiftService_Create_Success(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	shift, err := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany))
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}

	if !strings.HasPrefix(shift.Ref, "SHF-") {
		t.Errorf("ref format wrong: %s", shift.Ref)
	}
	if shift.OwnerID != 10 {
		t.Errorf("owner: expected 10, got %d", shift.OwnerID)
	}
	if !shift.Open {
		t.Error("new shifts must be open")
	}
	if shift.HourlyRate.Currency != "EUR" {
		t.Errorf("currency must be upper-cased, got %q", shift.HourlyRate.Currency)
	}
	if shift.CreatedAt.IsZero() {
		t.Error("CreatedAt must not be zero")
	}

	stored, err := repo.FindByRef(context.Background(), shift.Ref)
	if err != nil {
		t.Fatalf("shift must be persisted: %v", err)
	}
	if stored.Title != "Evening bar shift" {
		t.Errorf("stored title: %q", stored.Title)
	}
}

func TestShiftService_Create_AgencyAllowed(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	if _, err := svc.CreateShift(context.Background(), shiftInput(11, domain.RoleAgency)); err != nil {
		t.Fatalf("agency must be able to post shifts: %v", err)
	}
}

func TestShiftService_Create_StaffDenied(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	_, err := svc.CreateShift(context.Background(), shiftInput(12, domain.RoleStaff))
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestShiftService_Create_Validation(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	cases := []struct {
		name   string
		mutate func(*ports.CreateShiftInput)
	}{
		{"empty title", func(i *ports.CreateShiftInput) { i.Title = "  " }},
		{"empty location", func(i *ports.CreateShiftInput) { i.Location = "" }},
		{"zero rate", func(i *ports.CreateShiftInput) { i.RateAmount = 0 }},
		{"negative rate", func(i *ports.CreateShiftInput) { i.RateAmount = -100 }},
		{"bad currency", func(i *ports.CreateShiftInput) { i.Currency = "EURO" }},
		{"ends before starts", func(i *ports.CreateShiftInput) { i.EndsAt = i.StartsAt.Add(-time.Hour) }},
		{"zero times", func(i *ports.CreateShiftInput) { i.StartsAt, i.EndsAt = time.Time{}, time.Time{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := shiftInput(10, domain.RoleCompany)
			tc.mutate(&input)
			if _, err := svc.CreateShift(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ListShifts
// ---------------------------------------------------------------------------

func seedShifts(t *testing.T, svc *ShiftService) {
	t.Helper()
	// Two open shifts for owner 10, one for owner 20.
	for _, owner := range []int64{10, 10, 20} {
		if _, err := svc.CreateShift(context.Background(), shiftInput(owner, domain.RoleCompany)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// One closed shift for owner 10.
	closed, err := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.CloseShift(context.Background(), ports.CloseShiftInput{Ref: closed.Ref, ActorID: 10, Role: domain.RoleCompany}); err != nil {
		t.Fatalf("seed close: %v", err)
	}
}

func TestShiftService_List_BrowsersSeeOnlyOpen(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)
	seedShifts(t, svc)

	res, err := svc.ListShifts(context.Background(), ports.ListShiftsInput{
		ActorID: 99, Role: domain.RoleStaff, Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatalf("ListShifts: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("staff browse: expected 3 open shifts, got %d", res.Total)
	}
	for _, s := range res.Items {
		if !s.Open {
			t.Errorf("browse listing leaked closed shift %s", s.Ref)
		}
	}
}

func TestShiftService_List_MineIncludesClosed(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)
	seedShifts(t, svc)

	res, err := svc.ListShifts(context.Background(), ports.ListShiftsInput{
		ActorID: 10, Role: domain.RoleCompany, Mine: true, Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatalf("ListShifts: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("owner 10: expected 3 own shifts (incl. closed), got %d", res.Total)
	}
}

func TestShiftService_List_AdminSeesAll(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)
	seedShifts(t, svc)

	res, err := svc.ListShifts(context.Background(), ports.ListShiftsInput{
		ActorID: 1, Role: domain.RoleAdmin, Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatalf("ListShifts: %v", err)
	}
	if res.Total != 4 {
		t.Errorf("admin: expected 4 shifts, got %d", res.Total)
	}
}

func TestShiftService_List_PaginationMath(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)
	for i := 0; i < 5; i++ {
		if _, err := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	res, err := svc.ListShifts(context.Background(), ports.ListShiftsInput{
		ActorID: 1, Role: domain.RoleAdmin, Page: 1, Limit: 2,
	})
	if err != nil {
		t.Fatalf("ListShifts: %v", err)
	}
	if res.Total != 5 {
		t.Errorf("total: expected 5, got %d", res.Total)
	}
	if res.TotalPages != 3 {
		t.Errorf("total_pages: expected 3, got %d", res.TotalPages)
	}
	if len(res.Items) != 2 {
		t.Errorf("items: expected 2, got %d", len(res.Items))
	}
}

func TestShiftService_List_LimitDefaultsAndCap(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	res, err := svc.ListShifts(context.Background(), ports.ListShiftsInput{Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("ListShifts: %v", err)
	}
	if res.Limit != 20 {
		t.Errorf("expected default limit 20, got %d", res.Limit)
	}

	res, err = svc.ListShifts(context.Background(), ports.ListShiftsInput{Role: domain.RoleAdmin, Limit: 999, Page: 1})
	if err != nil {
		t.Fatalf("ListShifts: %v", err)
	}
	if res.Limit != 100 {
		t.Errorf("expected limit capped at 100, got %d", res.Limit)
	}
}

// ---------------------------------------------------------------------------
// UpdateShift / CloseShift
// ---------------------------------------------------------------------------

func TestShiftService_Update_OwnerOnly(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	shift, _ := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany))

	update := ports.UpdateShiftInput{
		Ref: shift.Ref, ActorID: 10, Role: domain.RoleCompany,
		Title: "Night shift", Location: "Rotterdam",
		RateAmount: 1900, Currency: "EUR",
		StartsAt: shift.StartsAt, EndsAt: shift.EndsAt,
	}
	updated, err := svc.UpdateShift(context.Background(), update)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Night shift" || updated.HourlyRate.Amount != 1900 {
		t.Errorf("update not applied: %+v", updated)
	}

	update.ActorID = 77
	if _, err := svc.UpdateShift(context.Background(), update); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("non-owner update: expected ErrPermissionDenied, got %v", err)
	}
}

func TestShiftService_Update_AdminBypassesOwnership(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	shift, _ := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany))

	_, err := svc.UpdateShift(context.Background(), ports.UpdateShiftInput{
		Ref: shift.Ref, ActorID: 1, Role: domain.RoleAdmin,
		Title: "Admin edit", Location: shift.Location,
		RateAmount: shift.HourlyRate.Amount, Currency: shift.HourlyRate.Currency,
		StartsAt: shift.StartsAt, EndsAt: shift.EndsAt,
	})
	if err != nil {
		t.Errorf("admin update must pass ownership gate: %v", err)
	}
}

func TestShiftService_Update_ClosedShiftImmutable(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	shift, _ := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany))
	if _, err := svc.CloseShift(context.Background(), ports.CloseShiftInput{Ref: shift.Ref, ActorID: 10, Role: domain.RoleCompany}); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := svc.UpdateShift(context.Background(), ports.UpdateShiftInput{
		Ref: shift.Ref, ActorID: 10, Role: domain.RoleCompany,
		Title: "Too late", Location: shift.Location,
		RateAmount: shift.HourlyRate.Amount, Currency: shift.HourlyRate.Currency,
		StartsAt: shift.StartsAt, EndsAt: shift.EndsAt,
	})
	if !errors.Is(err, domain.ErrShiftClosed) {
		t.Errorf("expected ErrShiftClosed, got %v", err)
	}
}

func TestShiftService_Close(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	shift, _ := svc.CreateShift(context.Background(), shiftInput(10, domain.RoleCompany))

	closed, err := svc.CloseShift(context.Background(), ports.CloseShiftInput{Ref: shift.Ref, ActorID: 10, Role: domain.RoleCompany})
	if err != nil {
		t.Fatalf("CloseShift: %v", err)
	}
	if closed.Open {
		t.Error("shift must be closed")
	}

	// Closing twice is an error, not a silent no-op.
	_, err = svc.CloseShift(context.Background(), ports.CloseShiftInput{Ref: shift.Ref, ActorID: 10, Role: domain.RoleCompany})
	if !errors.Is(err, domain.ErrShiftClosed) {
		t.Errorf("double close: expected ErrShiftClosed, got %v", err)
	}

	// Strangers cannot close.
	other, _ := svc.CreateShift(context.Background(), shiftInput(20, domain.RoleCompany))
	_, err = svc.CloseShift(context.Background(), ports.CloseShiftInput{Ref: other.Ref, ActorID: 10, Role: domain.RoleCompany})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("stranger close: expected ErrPermissionDenied, got %v", err)
	}
}

func TestShiftService_Get_NotFound(t *testing.T) {
	repo := newStubShiftRepo()
	svc := NewShiftService(repo, discardLogger)

	if _, err := svc.GetShift(context.Background(), "SHF-NOPE"); !errors.Is(err, domain.ErrShiftNotFound) {
		t.Errorf("expected ErrShiftNotFound, got %v", err)
	}
}
