package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type userFixture struct {
	svc    *UserService
	repo   *stubUserRepo
	hasher *countingHasher
	guard  *stubReplayGuard
	cache  *stubIdentityCache
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	repo := newStubUserRepo()
	hasher := &countingHasher{}
	tokens, err := NewTokenService(testAccessSecret, testRefreshSecret, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	guard := newStubReplayGuard()
	cache := newStubIdentityCache()

	return &userFixture{
		svc:    NewUserService(repo, hasher, guard, cache, tokens, discardLogger),
		repo:   repo,
		hasher: hasher,
		guard:  guard,
		cache:  cache,
	}
}

func (f *userFixture) seedUser(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	user, err := f.repo.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: "hashed|" + password,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestUserService_Profile(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	got, err := f.svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got.Email != "staff@example.com" {
		t.Errorf("wrong user: %s", got.Email)
	}

	if _, err := f.svc.Profile(context.Background(), 9999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------------

func TestUserService_ChangePassword_Success(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	err := f.svc.ChangePassword(context.Background(), ports.ChangePasswordInput{
		UserID:   user.ID,
		Current:  "current-password",
		Password: "brand-new-password",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), user.ID)
	if stored.PasswordHash != "hashed|brand-new-password" {
		t.Errorf("new hash not stored: %q", stored.PasswordHash)
	}

	// Every live session dies with the old password.
	if len(f.cache.invalidations) != 1 || f.cache.invalidations[0] != user.ID {
		t.Errorf("identity cache must be invalidated, got %v", f.cache.invalidations)
	}
	if f.guard.revokeCalls != 1 {
		t.Errorf("refresh tokens must be revoked, got %d revoke calls", f.guard.revokeCalls)
	}
	fence, _ := f.guard.RevokedAt(context.Background(), user.ID)
	if fence.IsZero() {
		t.Error("revocation fence must be set")
	}
}

func TestUserService_ChangePassword_WrongCurrent(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	err := f.svc.ChangePassword(context.Background(), ports.ChangePasswordInput{
		UserID:   user.ID,
		Current:  "guessed-wrong",
		Password: "brand-new-password",
	})
	if !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), user.ID)
	if stored.PasswordHash != "hashed|current-password" {
		t.Errorf("hash must be unchanged, got %q", stored.PasswordHash)
	}
	if f.guard.revokeCalls != 0 {
		t.Errorf("failed change must not revoke sessions, got %d calls", f.guard.revokeCalls)
	}
}

func TestUserService_ChangePassword_TooShort(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	err := f.svc.ChangePassword(context.Background(), ports.ChangePasswordInput{
		UserID:   user.ID,
		Current:  "current-password",
		Password: "short",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_ChangePassword_UnknownUser(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.ChangePassword(context.Background(), ports.ChangePasswordInput{
		UserID:   424242,
		Current:  "whatever-it-was",
		Password: "brand-new-password",
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// SetUserFlags
// ---------------------------------------------------------------------------

func TestUserService_SetUserFlags_NoFields(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	_, err := f.svc.SetUserFlags(context.Background(), ports.SetUserFlagsInput{UserID: user.ID})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_SetUserFlags_DeactivateRevokesSessions(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	inactive := false
	updated, err := f.svc.SetUserFlags(context.Background(), ports.SetUserFlagsInput{
		UserID: user.ID,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("SetUserFlags: %v", err)
	}
	if updated.Active {
		t.Error("account must be inactive")
	}
	if len(f.cache.invalidations) != 1 {
		t.Errorf("identity cache must be invalidated, got %v", f.cache.invalidations)
	}
	if f.guard.revokeCalls != 1 {
		t.Errorf("deactivation must revoke refresh tokens, got %d calls", f.guard.revokeCalls)
	}
}

func TestUserService_SetUserFlags_VerifyDoesNotRevoke(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	verified := true
	updated, err := f.svc.SetUserFlags(context.Background(), ports.SetUserFlagsInput{
		UserID:   user.ID,
		Verified: &verified,
	})
	if err != nil {
		t.Fatalf("SetUserFlags: %v", err)
	}
	if !updated.Verified {
		t.Error("account must be verified")
	}
	if !updated.Active {
		t.Error("active flag must be untouched")
	}
	if f.guard.revokeCalls != 0 {
		t.Errorf("verification must not revoke sessions, got %d calls", f.guard.revokeCalls)
	}
	// The cached identity is still refreshed so the flag shows up promptly.
	if len(f.cache.invalidations) != 1 {
		t.Errorf("identity cache must be invalidated, got %v", f.cache.invalidations)
	}
}

func TestUserService_SetUserFlags_Reactivate(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "staff@example.com", "current-password", domain.RoleStaff)

	inactive := false
	if _, err := f.svc.SetUserFlags(context.Background(), ports.SetUserFlagsInput{UserID: user.ID, Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active := true
	updated, err := f.svc.SetUserFlags(context.Background(), ports.SetUserFlagsInput{UserID: user.ID, Active: &active})
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !updated.Active {
		t.Error("account must be active again")
	}
	if f.guard.revokeCalls != 1 {
		t.Errorf("reactivation must not revoke again, got %d calls", f.guard.revokeCalls)
	}
}

// ---------------------------------------------------------------------------
// ListUsers
// ---------------------------------------------------------------------------

func TestUserService_ListUsers(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "a@example.com", "pw-a", domain.RoleStaff)
	f.seedUser(t, "b@example.com", "pw-b", domain.RoleStaff)
	company := f.seedUser(t, "c@example.com", "pw-c", domain.RoleCompany)

	res, err := f.svc.ListUsers(context.Background(), ports.ListUsersInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("expected 3 users, got %d", res.Total)
	}

	res, err = f.svc.ListUsers(context.Background(), ports.ListUsersInput{Role: "staff", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("expected 2 staff, got %d", res.Total)
	}

	inactive := false
	if _, err := f.svc.SetUserFlags(context.Background(), ports.SetUserFlagsInput{UserID: company.ID, Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	res, err = f.svc.ListUsers(context.Background(), ports.ListUsersInput{Active: &inactive, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("expected 1 inactive user, got %d", res.Total)
	}

	res, err = f.svc.ListUsers(context.Background(), ports.ListUsersInput{})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if res.Limit != 20 || res.Page != 1 {
		t.Errorf("defaults: expected page 1 limit 20, got page %d limit %d", res.Page, res.Limit)
	}
}
