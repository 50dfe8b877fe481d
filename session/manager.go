package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jobtrackapp/go-jobtrack-client/api"
)

// NetworkErrorMessage is the Result error text for a transport failure
// during Login or Register.
const NetworkErrorMessage = "Network error. Please try again."

// Manager maintains the authentication session. One instance owns the
// tokens and user record; consumers receive the instance by injection
// and read its state through the accessors.
type Manager struct {
	endpoints api.Endpoints
	client    api.Doer
	store     Store
	navigate  func()
	log       zerolog.Logger

	mu      sync.Mutex
	status  Status
	user    *User
	token   string
	loading bool

	refreshing atomic.Bool
}

// ManagerOption modifies a Manager during construction.
type ManagerOption func(*Manager)

// WithHTTPClient replaces the transport (primarily for testing).
func WithHTTPClient(client api.Doer) ManagerOption {
	return func(m *Manager) {
		m.client = client
	}
}

// WithNavigator sets the hook invoked when the session must return to the
// login surface. Logout always signals it.
func WithNavigator(navigate func()) ManagerOption {
	return func(m *Manager) {
		m.navigate = navigate
	}
}

// WithLogger sets the Manager's logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = logger
	}
}

// NewManager creates a session Manager backed by the given token store.
func NewManager(endpoints api.Endpoints, store Store, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}

	m := &Manager{
		endpoints: endpoints,
		client:    http.DefaultClient,
		store:     store,
		navigate:  func() {},
		log:       zerolog.Nop(),
		status:    StatusUnknown,
		loading:   true,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Wire shapes of the auth endpoints.

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registrationRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type authResponse struct {
	Message string    `json:"message"`
	User    *User     `json:"user"`
	Tokens  tokenPair `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Initialize restores a persisted session, if any. With no stored access
// token it settles on Anonymous without touching the network. A stored
// token is verified against the whoami endpoint; if the backend rejects
// it, a single refresh cycle recovers sessions whose access token merely
// expired. Loading becomes false exactly once, after the check resolves,
// whichever path was taken.
func (m *Manager) Initialize(ctx context.Context) {
	m.setStatus(StatusChecking)
	defer m.finishLoading()

	token := m.storedToken(AccessTokenKey)
	if token == "" {
		m.setAnonymous()
		return
	}

	user, err := m.whoami(ctx, token)
	if err != nil {
		m.log.Debug().Err(err).Msg("stored access token rejected, trying refresh")
		m.Refresh(ctx)
		return
	}
	m.setAuthenticated(user, token)
}

// Refresh exchanges the persisted refresh token for a new access token
// and re-fetches the user record. At most one cycle runs at a time: a
// caller that lands on the busy guard returns immediately without a
// duplicate network call, and must re-check session state itself rather
// than assume the in-flight cycle resolved its need. Any failure purges
// the session to Anonymous; refresh is never retried.
func (m *Manager) Refresh(ctx context.Context) {
	if !m.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer m.refreshing.Store(false)

	m.setStatus(StatusRefreshing)

	refreshToken := m.storedToken(RefreshTokenKey)
	if refreshToken == "" {
		m.purge()
		return
	}

	access, err := m.requestRefresh(ctx, refreshToken)
	if err != nil {
		m.log.Debug().Err(err).Msg("token refresh rejected")
		m.purge()
		return
	}

	if err := m.store.Set(AccessTokenKey, access); err != nil {
		m.log.Warn().Err(err).Msg("persisting refreshed access token failed")
	}

	user, err := m.whoami(ctx, access)
	if err != nil {
		// A fresh token with no user record would leave the session
		// authenticated-but-empty; purge instead.
		m.log.Debug().Err(err).Msg("whoami failed after refresh")
		m.purge()
		return
	}
	m.setAuthenticated(user, access)
}

// Login authenticates with username and password. On success both tokens
// are persisted and the session becomes Authenticated. On rejection the
// server's message is returned and any existing session is left
// untouched.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	return m.authenticate(ctx, m.endpoints.Login(), credentialsRequest{
		Username: username,
		Password: password,
	}, "Login failed")
}

// Register creates an account and signs it in; same contract as Login.
// The name fields are optional and default to empty.
func (m *Manager) Register(ctx context.Context, username, email, password, firstName, lastName string) Result {
	return m.authenticate(ctx, m.endpoints.Register(), registrationRequest{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	}, "Registration failed")
}

// Logout notifies the backend on a best-effort basis, always clears the
// persisted tokens and in-memory state, and always signals navigation to
// the login surface. Calling it with no session is a no-op apart from the
// cleanup and the signal.
func (m *Manager) Logout(ctx context.Context) {
	if refreshToken := m.storedToken(RefreshTokenKey); refreshToken != "" {
		if err := m.notifyLogout(ctx, refreshToken); err != nil {
			m.log.Warn().Err(err).Msg("backend logout notification failed")
		}
	}
	m.purge()
	m.navigate()
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{
		Status:          m.status,
		User:            m.user,
		IsAuthenticated: m.status == StatusAuthenticated,
		Loading:         m.loading,
	}
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusAuthenticated
}

// Loading reports whether the initial session check is still unresolved.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Token returns the in-memory access token, empty when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) authenticate(ctx context.Context, url string, payload any, fallback string) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Error: fallback}
	}

	req, err := api.NewRequest(ctx, http.MethodPost, url, bytes.NewReader(body), "", true)
	if err != nil {
		return Result{Error: NetworkErrorMessage}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return Result{Error: NetworkErrorMessage}
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return Result{Error: api.UserMessage(api.ResponseError(resp, fallback), fallback)}
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil || auth.User == nil {
		return Result{Error: fallback}
	}

	// Storage first, memory second.
	m.persistTokens(auth.Tokens)
	m.setAuthenticated(auth.User, auth.Tokens.Access)
	return Result{Success: true}
}

func (m *Manager) whoami(ctx context.Context, token string) (*User, error) {
	req, err := api.NewRequest(ctx, http.MethodGet, m.endpoints.User(), nil, token, true)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.whoami] build request")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.whoami] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return nil, api.ResponseError(resp, "fetching user failed")
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "[Manager.whoami] decode response")
	}
	return &user, nil
}

func (m *Manager) requestRefresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", errors.Wrap(err, "[Manager.requestRefresh] marshal")
	}

	req, err := api.NewRequest(ctx, http.MethodPost, m.endpoints.Refresh(), bytes.NewReader(body), "", true)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.requestRefresh] build request")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.requestRefresh] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return "", api.ResponseError(resp, "token refresh failed")
	}

	var refreshed refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return "", errors.Wrap(err, "[Manager.requestRefresh] decode response")
	}
	if refreshed.Access == "" {
		return "", errors.New("[Manager.requestRefresh] empty access token")
	}
	return refreshed.Access, nil
}

func (m *Manager) notifyLogout(ctx context.Context, refreshToken string) error {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return errors.Wrap(err, "[Manager.notifyLogout] marshal")
	}

	req, err := api.NewRequest(ctx, http.MethodPost, m.endpoints.Logout(), bytes.NewReader(body), m.Token(), true)
	if err != nil {
		return errors.Wrap(err, "[Manager.notifyLogout] build request")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Manager.notifyLogout] request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return api.ResponseError(resp, "logout failed")
	}
	return nil
}

// storedToken reads a token from the persisted store. Storage failures
// are logged and degrade to "no token" rather than erroring.
func (m *Manager) storedToken(key string) string {
	value, err := m.store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			m.log.Warn().Err(err).Str("key", key).Msg("token store read failed")
		}
		return ""
	}
	return value
}

func (m *Manager) persistTokens(tokens tokenPair) {
	if err := m.store.Set(AccessTokenKey, tokens.Access); err != nil {
		m.log.Warn().Err(err).Msg("persisting access token failed")
	}
	if err := m.store.Set(RefreshTokenKey, tokens.Refresh); err != nil {
		m.log.Warn().Err(err).Msg("persisting refresh token failed")
	}
}

// purge removes both persisted tokens and clears the in-memory session.
// It does not signal navigation; consumers observing IsAuthenticated
// resolve to the login surface themselves.
func (m *Manager) purge() {
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := m.store.Delete(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
			m.log.Warn().Err(err).Str("key", key).Msg("token store delete failed")
		}
	}

	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.status = StatusAnonymous
	m.mu.Unlock()
}

func (m *Manager) setAuthenticated(user *User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.status = StatusAuthenticated
	m.mu.Unlock()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.status = StatusAnonymous
	m.mu.Unlock()
}

func (m *Manager) setStatus(status Status) {
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Manager) finishLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
