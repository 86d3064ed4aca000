package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu            sync.Mutex
	byEmail       map[string]*domain.User
	nextID        int64
	updateHashErr error // if set, UpdatePasswordHash returns this error
	hashUpdates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = r.nextID
	r.byEmail[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateHashErr != nil {
		return r.updateHashErr
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			u.UpdatedAt = time.Now().UTC()
			r.hashUpdates++
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateFlags(_ context.Context, id int64, update ports.UserFlagsUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			if update.Active != nil {
				u.Active = *update.Active
			}
			if update.Verified != nil {
				u.Verified = *update.Verified
			}
			u.UpdatedAt = time.Now().UTC()
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for _, u := range r.byEmail {
		if filter.Role != "" && string(u.Role) != filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Email, strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	return matched, int64(len(matched)), nil
}

// setHash plants a stored hash directly, bypassing the service.
func (r *stubUserRepo) setHash(email, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[email].PasswordHash = hash
}

// countingHasher is a deterministic fake credential hasher. Hashes look like
// "hashed|<password>"; a stored value of "legacy|<password>" verifies but
// reports an upgrade, mimicking an old-format hash.
type countingHasher struct {
	mu       sync.Mutex
	verifies int
	hashes   int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes++
	return "hashed|" + password, nil
}

func (h *countingHasher) Verify(password, encoded string) (bool, string) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()

	if legacy, found := strings.CutPrefix(encoded, "legacy|"); found {
		if legacy == password {
			return true, "hashed|" + password
		}
		return false, ""
	}
	return encoded == "hashed|"+password, ""
}

func (h *countingHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

type stubReplayGuard struct {
	mu          sync.Mutex
	used        map[string]bool
	fences      map[int64]time.Time
	revokeCalls int
}

func newStubReplayGuard() *stubReplayGuard {
	return &stubReplayGuard{used: make(map[string]bool), fences: make(map[int64]time.Time)}
}

func (g *stubReplayGuard) IsUsed(_ context.Context, jti string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used[jti], nil
}

func (g *stubReplayGuard) MarkUsed(_ context.Context, jti string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.used[jti] {
		return false, nil
	}
	g.used[jti] = true
	return true, nil
}

func (g *stubReplayGuard) RevokeSubject(_ context.Context, userID int64, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revokeCalls++
	// Fences round up to a whole second, covering every token issued in the
	// revocation second (token timestamps have second precision).
	g.fences[userID] = time.Now().UTC().Truncate(time.Second).Add(time.Second)
	return nil
}

func (g *stubReplayGuard) RevokedAt(_ context.Context, userID int64) (time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fences[userID], nil
}

type stubIdentityCache struct {
	mu            sync.Mutex
	entries       map[int64]*domain.User
	invalidations []int64
	getErr        error // if set, Get returns this error
}

func newStubIdentityCache() *stubIdentityCache {
	return &stubIdentityCache{entries: make(map[int64]*domain.User)}
}

func (c *stubIdentityCache) Get(_ context.Context, id int64) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return cloneUser(c.entries[id]), nil
}

func (c *stubIdentityCache) Set(_ context.Context, user *domain.User, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = cloneUser(user)
	return nil
}

func (c *stubIdentityCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidations = append(c.invalidations, id)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type authFixture struct {
	svc    *AuthService
	repo   *stubUserRepo
	hasher *countingHasher
	guard  *stubReplayGuard
	cache  *stubIdentityCache
	tokens *TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newStubUserRepo()
	hasher := &countingHasher{}
	tokens, err := NewTokenService(testAccessSecret, testRefreshSecret, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	guard := newStubReplayGuard()
	cache := newStubIdentityCache()

	svc, err := NewAuthService(repo, hasher, tokens, guard, cache, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return &authFixture{svc: svc, repo: repo, hasher: hasher, guard: guard, cache: cache, tokens: tokens}
}

func (f *authFixture) register(t *testing.T, email, password, role string) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return user
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "Owner@Example.COM", "plenty-long-password", "company")

	if user.ID == 0 {
		t.Error("expected allocated user id")
	}
	if user.Email != "owner@example.com" {
		t.Errorf("email must be normalised, got %q", user.Email)
	}
	if user.Role != domain.RoleCompany {
		t.Errorf("role: expected company, got %s", user.Role)
	}
	if !user.Active {
		t.Error("new accounts must start active")
	}
	if user.Verified {
		t.Error("new accounts must start unverified")
	}
	if user.PasswordHash == "plenty-long-password" {
		t.Error("password must be hashed")
	}
}

func TestAuthService_Register_RejectsAdminRole(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:    "boss@example.com",
		Password: "plenty-long-password",
		Role:     "admin",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("admin self-registration must fail with ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name  string
		input ports.RegisterInput
	}{
		{"empty email", ports.RegisterInput{Email: "", Password: "plenty-long-password", Role: "staff"}},
		{"unknown role", ports.RegisterInput{Email: "a@b.com", Password: "plenty-long-password", Role: "superuser"}},
		{"short password", ports.RegisterInput{Email: "a@b.com", Password: "short", Role: "staff"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Register(context.Background(), tc.input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "dup@example.com", "plenty-long-password", "staff")
	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:    "DUP@example.com",
		Password: "another-long-password",
		Role:     "staff",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "carol@example.com", "correct-horse-battery", "agency")

	pair, user, err := f.svc.Login(context.Background(), "carol@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user == nil || user.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("token type: expected bearer, got %q", pair.TokenType)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in: expected 900, got %d", pair.ExpiresIn)
	}

	claims, err := f.tokens.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("issued access token must verify: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleAgency {
		t.Errorf("access claims mismatch: %+v", claims)
	}
	if _, err := f.tokens.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("issued refresh token must verify: %v", err)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "dave@example.com", "correct-horse-battery", "staff")

	inactive := false
	if _, err := f.repo.UpdateFlags(context.Background(), user.ID, ports.UserFlagsUpdate{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	f.register(t, "erin@example.com", "correct-horse-battery", "staff")

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "ghost@example.com", "whatever-password"},
		{"wrong password", "erin@example.com", "not-the-password"},
		{"inactive account with correct password", "dave@example.com", "correct-horse-battery"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, domain.ErrBadCredentials) {
				t.Errorf("expected ErrBadCredentials, got %v", err)
			}
		})
	}
}

// TestAuthService_Login_OneVerifyPerAttempt pins the timing-uniformity
// property: every login attempt costs exactly one hash verification, whether
// the account exists, the password is wrong, or the account is inactive.
func TestAuthService_Login_OneVerifyPerAttempt(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "frank@example.com", "correct-horse-battery", "staff")

	inactiveUser := f.register(t, "off@example.com", "correct-horse-battery", "staff")
	inactive := false
	if _, err := f.repo.UpdateFlags(context.Background(), inactiveUser.ID, ports.UserFlagsUpdate{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	attempts := []struct {
		name     string
		email    string
		password string
	}{
		{"success", "frank@example.com", "correct-horse-battery"},
		{"wrong password", "frank@example.com", "wrong"},
		{"unknown account", "nobody@example.com", "wrong"},
		{"inactive account", "off@example.com", "correct-horse-battery"},
	}

	for _, a := range attempts {
		t.Run(a.name, func(t *testing.T) {
			before := f.hasher.verifyCount()
			_, _, _ = f.svc.Login(context.Background(), a.email, a.password)
			if got := f.hasher.verifyCount() - before; got != 1 {
				t.Errorf("expected exactly 1 hash verification, got %d", got)
			}
		})
	}
}

func TestAuthService_Login_UpgradesLegacyHash(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "legacy@example.com", "correct-horse-battery", "staff")
	f.repo.setHash("legacy@example.com", "legacy|correct-horse-battery")

	_, _, err := f.svc.Login(context.Background(), "legacy@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	stored, _ := f.repo.FindByEmail(context.Background(), "legacy@example.com")
	if stored.PasswordHash != "hashed|correct-horse-battery" {
		t.Errorf("hash must be upgraded in place, got %q", stored.PasswordHash)
	}
	if len(f.cache.invalidations) != 1 || f.cache.invalidations[0] != user.ID {
		t.Errorf("identity cache must be invalidated after upgrade, got %v", f.cache.invalidations)
	}

	// Second login: already current, no second write.
	if _, _, err := f.svc.Login(context.Background(), "legacy@example.com", "correct-horse-battery"); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if f.repo.hashUpdates != 1 {
		t.Errorf("expected exactly 1 hash update, got %d", f.repo.hashUpdates)
	}
}

func TestAuthService_Login_UpgradeFailureDoesNotBlockLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "legacy2@example.com", "correct-horse-battery", "staff")
	f.repo.setHash("legacy2@example.com", "legacy|correct-horse-battery")
	f.repo.updateHashErr = errors.New("db unavailable")

	pair, _, err := f.svc.Login(context.Background(), "legacy2@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("login must succeed even when the upgrade write fails: %v", err)
	}
	if pair == nil || pair.AccessToken == "" {
		t.Fatal("expected token pair")
	}
}

func TestAuthService_Login_MalformedStoredHashIsRejection(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "broken@example.com", "correct-horse-battery", "staff")
	f.repo.setHash("broken@example.com", "not-a-recognisable-hash")

	_, _, err := f.svc.Login(context.Background(), "broken@example.com", "correct-horse-battery")
	if !errors.Is(err, domain.ErrBadCredentials) {
		t.Errorf("malformed stored hash must reject uniformly, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func login(t *testing.T, f *authFixture, email, password string) *ports.TokenPair {
	t.Helper()
	pair, _, err := f.svc.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return pair
}

func TestAuthService_Refresh_RotatesPair(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "rot@example.com", "correct-horse-battery", "company")
	pair := login(t, f, "rot@example.com", "correct-horse-battery")

	oldClaims, err := f.tokens.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}

	next, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh must rotate the refresh token")
	}

	newClaims, err := f.tokens.VerifyAccess(next.AccessToken)
	if err != nil {
		t.Fatalf("new access token must verify: %v", err)
	}
	if newClaims.UserID != user.ID {
		t.Errorf("subject mismatch after rotation: %d", newClaims.UserID)
	}

	used, _ := f.guard.IsUsed(context.Background(), oldClaims.ID)
	if !used {
		t.Error("redeemed token id must be marked used")
	}
}

func TestAuthService_Refresh_ReplayDetected(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "victim@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "victim@example.com", "correct-horse-battery")

	if _, err := f.svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first redemption: %v", err)
	}

	_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrTokenReplayed) {
		t.Fatalf("second redemption must report replay, got %v", err)
	}
	if f.guard.revokeCalls != 1 {
		t.Errorf("replay must revoke the subject, revoke calls = %d", f.guard.revokeCalls)
	}
}

func TestAuthService_Refresh_ReplayRevokesWholeLineage(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "lineage@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "lineage@example.com", "correct-horse-battery")

	next, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrTokenReplayed) {
		t.Fatalf("expected replay, got %v", err)
	}

	// The legitimately rotated token is inside the fence too.
	_, err = f.svc.Refresh(context.Background(), next.RefreshToken)
	if !errors.Is(err, domain.ErrTokenRevoked) {
		t.Errorf("post-replay, rotated token must be revoked, got %v", err)
	}
}

// TestAuthService_Refresh_ConcurrentDoubleRedemption races many redemptions
// of one token. Exactly one caller may win; every loser gets an
// authentication failure and at least one of them trips the replay alarm.
func TestAuthService_Refresh_ConcurrentDoubleRedemption(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "race@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "race@example.com", "correct-horse-battery")

	const callers = 8
	results := make([]error, callers)

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Refresh(context.Background(), pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	var wins, replays int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrTokenReplayed), errors.Is(err, domain.ErrTokenRevoked):
			replays++
		default:
			t.Errorf("unexpected error under race: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("exactly one concurrent redemption may win, got %d", wins)
	}
	if replays != callers-1 {
		t.Errorf("expected %d losers, got %d", callers-1, replays)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "kind@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "kind@example.com", "correct-horse-battery")

	_, err := f.svc.Refresh(context.Background(), pair.AccessToken)
	if !domain.IsAuthFailure(err) {
		t.Errorf("access token presented as refresh must fail auth, got %v", err)
	}
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)

	expired := signTestToken(t, testRefreshSecret, tokenClaims{
		Role: domain.RoleStaff,
		Kind: ports.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ID:        "expired-refresh",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	})

	_, err := f.svc.Refresh(context.Background(), expired)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Refresh_InactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "gone@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "gone@example.com", "correct-horse-battery")

	inactive := false
	if _, err := f.repo.UpdateFlags(context.Background(), user.ID, ports.UserFlagsUpdate{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrBadCredentials) {
		t.Errorf("deactivated account must not refresh, got %v", err)
	}
}

func TestAuthService_Refresh_FenceBlocksEarlierTokens(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "fenced@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "fenced@example.com", "correct-horse-battery")

	if err := f.guard.RevokeSubject(context.Background(), user.ID, time.Hour); err != nil {
		t.Fatalf("RevokeSubject: %v", err)
	}

	_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrTokenRevoked) {
		t.Errorf("token issued before the fence must be revoked, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestAuthService_Logout_RetiresToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "bye@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "bye@example.com", "correct-horse-battery")

	if err := f.svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// Redeeming a retired token looks exactly like a replay.
	_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrTokenReplayed) {
		t.Errorf("retired token redemption must report replay, got %v", err)
	}
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "twice@example.com", "correct-horse-battery", "staff")
	pair := login(t, f, "twice@example.com", "correct-horse-battery")

	if err := f.svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := f.svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("second logout must be a no-op, got %v", err)
	}
}

func TestAuthService_Logout_RejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.svc.Logout(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}
