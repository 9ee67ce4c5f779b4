// Package auth owns the session/token lifecycle: it is the only component
// that mutates the persisted Session.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/babymonitor/go-monitor-client/api"
	"github.com/babymonitor/go-monitor-client/internal/utils"
	"github.com/babymonitor/go-monitor-client/session"
)

// Manager orchestrates login, registration, logout and token refresh against
// the backend, folding the results into the session store.
//
// Mutating operations are serialized on a per-manager mutex: the stale read,
// the remote call and the atomic commit form one critical section, so a
// refresh started before a logout completes cannot resurrect a cleared
// session. Store watchers are read-only and never block a mutation.
type Manager struct {
	client api.Client
	store  session.Store
	logger zerolog.Logger

	mu      sync.Mutex
	nowTime func() time.Time
}

// ManagerOption modifies a Manager during construction.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates a Manager with required dependencies.
func NewManager(client api.Client, store session.Store, options ...ManagerOption) (*Manager, error) {
	if client == nil {
		return nil, errors.New("[NewManager] api client is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] session store is required")
	}

	m := &Manager{
		client:  client,
		store:   store,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Register creates an account and, when the backend returns tokens, commits
// the logged-in session in one atomic update. A nominally successful
// response without both tokens is treated as a rejection: the session is
// never marked logged-in without an access token.
func (m *Manager) Register(ctx context.Context, request api.RegisterRequest) (*api.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.client.Register(ctx, request)
	if err != nil {
		return nil, remoteErr("Register", err)
	}
	if err := m.commitAuthResult(ctx, result); err != nil {
		return nil, err
	}
	m.logger.Info().Str("username", request.Username).Msg("registered")
	return result, nil
}

// Login authenticates and commits the logged-in session in one atomic
// update, under the same token rules as Register.
func (m *Manager) Login(ctx context.Context, request api.LoginRequest) (*api.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.client.Login(ctx, request)
	if err != nil {
		return nil, remoteErr("Login", err)
	}
	if err := m.commitAuthResult(ctx, result); err != nil {
		return nil, err
	}
	m.logger.Info().Str("username", request.Username).Msg("logged in")
	return result, nil
}

// commitAuthResult folds a successful auth envelope into the store. Profile
// fields, both tokens and the logged-in flag land in a single Update.
func (m *Manager) commitAuthResult(ctx context.Context, result *api.AuthResult) error {
	if !result.Success {
		return errors.Wrap(RejectedErr, rejectionMessage(result))
	}

	token := utils.Value(result.Token)
	refreshToken := utils.Value(result.RefreshToken)
	if token == "" || refreshToken == "" {
		return errors.Wrap(RejectedErr, "auth response missing tokens")
	}

	fields := session.Fields{
		AccessToken:  utils.Ptr(token),
		RefreshToken: utils.Ptr(refreshToken),
		IsLoggedIn:   utils.Ptr(true),
	}
	if user := result.User; user != nil {
		fields.UserID = utils.Ptr(user.UserID)
		fields.Username = utils.Ptr(user.Username)
		fields.Email = utils.Ptr(user.Email)
		fields.DisplayName = utils.Ptr(utils.Value(user.DisplayName))
	}
	if err := m.store.Update(ctx, fields); err != nil {
		return errors.Wrap(StorageErr, err.Error())
	}
	return nil
}

// Logout invalidates the stored access token remotely, then clears the
// session. With no stored token it clears locally without a network call.
// A failed remote logout leaves the session untouched.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.store.Read(ctx)
	if err != nil {
		return errors.Wrap(StorageErr, err.Error())
	}
	if current.AccessToken != "" {
		if _, err := m.client.Logout(ctx, current.AccessToken); err != nil {
			return remoteErr("Logout", err)
		}
	}
	if err := m.store.Clear(ctx); err != nil {
		return errors.Wrap(StorageErr, err.Error())
	}
	m.logger.Info().Msg("logged out")
	return nil
}

// RefreshToken exchanges the stored refresh token for a new token pair and
// overwrites the two token fields only; the logged-in flag and profile
// fields are untouched. On any failure the session is unchanged.
func (m *Manager) RefreshToken(ctx context.Context) (*api.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) (*api.AuthResult, error) {
	current, err := m.store.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(StorageErr, err.Error())
	}
	if current.RefreshToken == "" {
		return nil, errors.Wrap(NoRefreshTokenErr, "refresh requires a stored refresh token")
	}

	result, err := m.client.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return nil, remoteErr("RefreshToken", err)
	}
	if !result.Success {
		return nil, errors.Wrap(RejectedErr, rejectionMessage(result))
	}

	token := utils.Value(result.Token)
	refreshToken := utils.Value(result.RefreshToken)
	if token == "" || refreshToken == "" {
		return nil, errors.Wrap(RejectedErr, "refresh response missing tokens")
	}

	fields := session.Fields{
		AccessToken:  utils.Ptr(token),
		RefreshToken: utils.Ptr(refreshToken),
	}
	if err := m.store.Update(ctx, fields); err != nil {
		return nil, errors.Wrap(StorageErr, err.Error())
	}
	m.logger.Debug().Msg("tokens refreshed")
	return result, nil
}

// GetProfile fetches the current user's profile. Read-only: the session is
// never mutated, so it does not take the mutation lock.
func (m *Manager) GetProfile(ctx context.Context) (*api.User, error) {
	current, err := m.store.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(StorageErr, err.Error())
	}
	if current.AccessToken == "" {
		return nil, errors.Wrap(NotLoggedInErr, "profile requires a stored access token")
	}

	user, err := m.client.GetProfile(ctx, current.AccessToken)
	if err != nil {
		return nil, remoteErr("GetProfile", err)
	}
	return user, nil
}

// IsLoggedIn reads the committed logged-in flag.
func (m *Manager) IsLoggedIn(ctx context.Context) (bool, error) {
	current, err := m.store.Read(ctx)
	if err != nil {
		return false, errors.Wrap(StorageErr, err.Error())
	}
	return current.IsLoggedIn, nil
}

func rejectionMessage(result *api.AuthResult) string {
	if msg := utils.Value(result.Message); msg != "" {
		return msg
	}
	return "request failed"
}

// remoteErr maps a client error onto the failure taxonomy: a 4xx reply is a
// server-side rejection, everything else (5xx, timeouts, connection
// failures) is a transport failure.
func remoteErr(op string, err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		return errors.Wrapf(RejectedErr, "[%s] %s", op, apiErr.Message)
	}
	return errors.Wrapf(TransportErr, "[%s] %v", op, err)
}
