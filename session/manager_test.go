package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jobtrackapp/go-jobtrack-client/api"
	"github.com/jobtrackapp/go-jobtrack-client/internal/utils"
	"github.com/jobtrackapp/go-jobtrack-client/session"
	"github.com/jobtrackapp/go-jobtrack-client/session/storefakes"
)

const (
	testUsername = "alice"
	testEmail    = "alice@example.com"
	testPassword = "password123"
	signingKey   = "test-signing-key"
)

// mintToken creates a realistic HS256 bearer token. The Manager treats
// tokens as opaque, so only the backend fixture checks them.
func mintToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return token
}

// fakeBackend is an httptest server speaking the auth endpoints.
type fakeBackend struct {
	server *httptest.Server

	mu                sync.Mutex
	calls             map[string]int
	validAccess       map[string]bool   // tokens whoami accepts
	validRefresh      map[string]string // refresh token -> access token it yields
	whoamiAlwaysFails bool
	refreshDelay      time.Duration
	logoutBodies      []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		calls:        map[string]int{},
		validAccess:  map[string]bool{},
		validRefresh: map[string]string{},
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) user() session.User {
	return session.User{
		ID:        1,
		Username:  testUsername,
		Email:     testEmail,
		FirstName: utils.Ptr("Alice"),
		LastName:  utils.Ptr("Smith"),
	}
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	b.mu.Unlock()

	switch r.URL.Path {
	case "/api/auth/user/":
		b.handleWhoami(w, r)
	case "/api/auth/refresh/":
		b.handleRefresh(w, r)
	case "/api/auth/login/":
		b.handleLogin(w, r)
	case "/api/auth/register/":
		b.handleRegister(w, r)
	case "/api/auth/logout/":
		b.handleLogout(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) handleWhoami(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	b.mu.Lock()
	valid := b.validAccess[token] && !b.whoamiAlwaysFails
	b.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, b.user())
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	access, ok := b.validRefresh[body.RefreshToken]
	delay := b.refreshDelay
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
		return
	}

	b.mu.Lock()
	b.validAccess[access] = true
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	if creds.Username != testUsername || creds.Password != testPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}
	b.issueSession(w, http.StatusOK)
}

func (b *fakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if body.Username == testUsername {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username already exists"})
		return
	}
	b.issueSession(w, http.StatusCreated)
}

func (b *fakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	b.logoutBodies = append(b.logoutBodies, body.RefreshToken)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (b *fakeBackend) issueSession(w http.ResponseWriter, status int) {
	access := "issued-access"
	refresh := "issued-refresh"

	b.mu.Lock()
	b.validAccess[access] = true
	b.validRefresh[refresh] = access
	b.mu.Unlock()

	writeJSON(w, status, map[string]any{
		"user":   b.user(),
		"tokens": map[string]string{"access": access, "refresh": refresh},
	})
}

func (b *fakeBackend) callCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// testFixture bundles a backend, a fake store, and a Manager.
type testFixture struct {
	backend   *fakeBackend
	store     *storefakes.FakeStore
	manager   *session.Manager
	navigated *int
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := newFakeBackend(t)
	store := storefakes.NewFakeStore()
	navigated := 0

	manager, err := session.NewManager(
		api.NewEndpoints(backend.server.URL),
		store,
		session.WithHTTPClient(backend.server.Client()),
		session.WithNavigator(func() { navigated++ }),
	)
	require.NoError(t, err)

	return &testFixture{
		backend:   backend,
		store:     store,
		manager:   manager,
		navigated: &navigated,
	}
}

func TestNewManagerRequiresStore(t *testing.T) {
	_, err := session.NewManager(api.NewEndpoints("http://localhost"), nil)
	require.Error(t, err)
}

func TestInitializeWithoutStoredToken(t *testing.T) {
	f := setupTestFixture(t)

	f.manager.Initialize(context.Background())

	snapshot := f.manager.Snapshot()
	require.False(t, snapshot.Loading)
	require.False(t, snapshot.IsAuthenticated)
	require.Nil(t, snapshot.User)
	require.Equal(t, session.StatusAnonymous, snapshot.Status)
	require.Zero(t, f.backend.totalCalls())
}

func TestInitializeWithValidToken(t *testing.T) {
	f := setupTestFixture(t)

	access := mintToken(t, testUsername, time.Hour)
	f.backend.validAccess[access] = true
	require.NoError(t, f.store.Set(session.AccessTokenKey, access))

	f.manager.Initialize(context.Background())

	snapshot := f.manager.Snapshot()
	require.True(t, snapshot.IsAuthenticated)
	require.False(t, snapshot.Loading)
	require.Equal(t, testUsername, snapshot.User.Username)
	require.Equal(t, access, f.manager.Token())
	require.Equal(t, 1, f.backend.callCount("/api/auth/user/"))
}

func TestInitializeRecoversExpiredAccessToken(t *testing.T) {
	f := setupTestFixture(t)

	expired := mintToken(t, testUsername, -time.Hour)
	refresh := mintToken(t, testUsername, 24*time.Hour)
	renewed := mintToken(t, testUsername, time.Hour)
	f.backend.validRefresh[refresh] = renewed

	require.NoError(t, f.store.Set(session.AccessTokenKey, expired))
	require.NoError(t, f.store.Set(session.RefreshTokenKey, refresh))

	f.manager.Initialize(context.Background())

	snapshot := f.manager.Snapshot()
	require.True(t, snapshot.IsAuthenticated)
	require.False(t, snapshot.Loading)
	require.Equal(t, "Alice Smith", snapshot.User.DisplayName())

	// whoami-fail, refresh, whoami-retry: three calls in total.
	require.Equal(t, 2, f.backend.callCount("/api/auth/user/"))
	require.Equal(t, 1, f.backend.callCount("/api/auth/refresh/"))

	persisted, err := f.store.Get(session.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, renewed, persisted)
}

func TestInitializePurgesWhenRefreshRejected(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.Set(session.AccessTokenKey, "stale-access"))
	require.NoError(t, f.store.Set(session.RefreshTokenKey, "stale-refresh"))

	f.manager.Initialize(context.Background())

	snapshot := f.manager.Snapshot()
	require.False(t, snapshot.IsAuthenticated)
	require.False(t, snapshot.Loading)
	require.Equal(t, session.StatusAnonymous, snapshot.Status)
	require.False(t, f.store.Has(session.AccessTokenKey))
	require.False(t, f.store.Has(session.RefreshTokenKey))
}

func TestInitializeDegradesOnStorageFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Err = context.DeadlineExceeded // any non-ErrKeyNotFound error

	f.manager.Initialize(context.Background())

	snapshot := f.manager.Snapshot()
	require.False(t, snapshot.IsAuthenticated)
	require.False(t, snapshot.Loading)
	require.Zero(t, f.backend.totalCalls())
}

func TestRefreshSingleFlight(t *testing.T) {
	f := setupTestFixture(t)

	refresh := mintToken(t, testUsername, 24*time.Hour)
	renewed := mintToken(t, testUsername, time.Hour)
	f.backend.validRefresh[refresh] = renewed
	f.backend.refreshDelay = 100 * time.Millisecond
	require.NoError(t, f.store.Set(session.RefreshTokenKey, refresh))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.manager.Refresh(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, 1, f.backend.callCount("/api/auth/refresh/"))
	require.True(t, f.manager.IsAuthenticated())
}

func TestRefreshPurgesWhenWhoamiFailsAfterRefresh(t *testing.T) {
	f := setupTestFixture(t)

	refresh := mintToken(t, testUsername, 24*time.Hour)
	f.backend.validRefresh[refresh] = "renewed-access"
	f.backend.whoamiAlwaysFails = true
	require.NoError(t, f.store.Set(session.RefreshTokenKey, refresh))

	// The backend hands out a new access token but then refuses it; an
	// "authenticated but no user" state must not survive.
	f.manager.Refresh(context.Background())

	require.False(t, f.manager.IsAuthenticated())
	require.Equal(t, session.StatusAnonymous, f.manager.Snapshot().Status)
	require.False(t, f.store.Has(session.AccessTokenKey))
	require.False(t, f.store.Has(session.RefreshTokenKey))
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)

	result := f.manager.Login(context.Background(), testUsername, testPassword)

	require.True(t, result.Success)
	require.Empty(t, result.Error)
	require.True(t, f.manager.IsAuthenticated())
	require.Equal(t, testUsername, f.manager.CurrentUser().Username)

	access, err := f.store.Get(session.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "issued-access", access)
	refresh, err := f.store.Get(session.RefreshTokenKey)
	require.NoError(t, err)
	require.Equal(t, "issued-refresh", refresh)
}

func TestLoginRejectedLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)

	// Establish a session first.
	require.True(t, f.manager.Login(context.Background(), testUsername, testPassword).Success)
	before := f.store.Ops()

	result := f.manager.Login(context.Background(), testUsername, "wrong")

	require.False(t, result.Success)
	require.Equal(t, "Invalid username or password", result.Error)
	require.True(t, f.manager.IsAuthenticated())
	require.Equal(t, before, f.store.Ops())
}

func TestRegisterSuccess(t *testing.T) {
	f := setupTestFixture(t)

	result := f.manager.Register(context.Background(), "bob", "bob@example.com", testPassword, "", "")

	require.True(t, result.Success)
	require.True(t, f.manager.IsAuthenticated())
	require.True(t, f.store.Has(session.AccessTokenKey))
	require.True(t, f.store.Has(session.RefreshTokenKey))
}

func TestRegisterRejectedSurfacesServerMessage(t *testing.T) {
	f := setupTestFixture(t)

	result := f.manager.Register(context.Background(), testUsername, testEmail, testPassword, "", "")

	require.False(t, result.Success)
	require.Equal(t, "Username already exists", result.Error)
}

func TestLoginTransportFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.server.Close()

	result := f.manager.Login(context.Background(), testUsername, testPassword)

	require.False(t, result.Success)
	require.Equal(t, session.NetworkErrorMessage, result.Error)
	require.False(t, f.manager.IsAuthenticated())
}

func TestLogoutClearsSessionAndNavigates(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.manager.Login(context.Background(), testUsername, testPassword).Success)

	f.manager.Logout(context.Background())

	require.False(t, f.manager.IsAuthenticated())
	require.Nil(t, f.manager.CurrentUser())
	require.False(t, f.store.Has(session.AccessTokenKey))
	require.False(t, f.store.Has(session.RefreshTokenKey))
	require.Equal(t, 1, *f.navigated)
	require.Equal(t, []string{"issued-refresh"}, f.backend.logoutBodies)
}

func TestLogoutWithoutSessionIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)

	f.manager.Logout(context.Background())
	f.manager.Logout(context.Background())

	require.False(t, f.manager.IsAuthenticated())
	require.Equal(t, 2, *f.navigated)
	require.Zero(t, f.backend.callCount("/api/auth/logout/"))
}

func TestLogoutProceedsWhenBackendUnreachable(t *testing.T) {
	f := setupTestFixture(t)
	require.True(t, f.manager.Login(context.Background(), testUsername, testPassword).Success)
	f.backend.server.Close()

	f.manager.Logout(context.Background())

	require.False(t, f.manager.IsAuthenticated())
	require.False(t, f.store.Has(session.AccessTokenKey))
	require.Equal(t, 1, *f.navigated)
}

func TestTokenSource(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.TokenSource().Token()
	require.Error(t, err)

	require.True(t, f.manager.Login(context.Background(), testUsername, testPassword).Success)

	token, err := f.manager.TokenSource().Token()
	require.NoError(t, err)
	require.Equal(t, "issued-access", token.AccessToken)
	require.Equal(t, "Bearer", token.TokenType)
}
