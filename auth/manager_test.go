package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/babymonitor/go-monitor-client/api"
	"github.com/babymonitor/go-monitor-client/api/apifake"
	"github.com/babymonitor/go-monitor-client/auth"
	"github.com/babymonitor/go-monitor-client/internal/utils"
	"github.com/babymonitor/go-monitor-client/session"
)

const (
	testUserID      = "u1"
	testUsername    = "alice"
	testEmail       = "alice@example.com"
	testPassword    = "password123"
	testToken       = "T1"
	testRefreshTok  = "R1"
	testToken2      = "T2"
	testRefreshTok2 = "R2"
)

// testFixture holds all test dependencies
type testFixture struct {
	client  *apifake.FakeClient
	store   *session.InMemoryStore
	manager *auth.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	client := apifake.NewFakeClient()
	store := session.NewInMemoryStore()
	manager, err := auth.NewManager(client, store)
	require.NoError(t, err)

	return &testFixture{client: client, store: store, manager: manager}
}

func successResult() *api.AuthResult {
	return &api.AuthResult{
		Success: true,
		User: &api.User{
			UserID:   testUserID,
			Username: testUsername,
			Email:    testEmail,
		},
		Token:        utils.Ptr(testToken),
		RefreshToken: utils.Ptr(testRefreshTok),
	}
}

func (f *testFixture) loginSession(t *testing.T) {
	t.Helper()
	f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
		return successResult(), nil
	}
	_, err := f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: testPassword})
	require.NoError(t, err)
}

func (f *testFixture) readSession(t *testing.T) session.Session {
	t.Helper()
	current, err := f.store.Read(context.Background())
	require.NoError(t, err)
	return current
}

func TestNewManagerRequiresDependencies(t *testing.T) {
	_, err := auth.NewManager(nil, session.NewInMemoryStore())
	require.Error(t, err)

	_, err = auth.NewManager(apifake.NewFakeClient(), nil)
	require.Error(t, err)
}

func TestLoginSuccessCommitsSessionAtomically(t *testing.T) {
	f := setupTestFixture(t)
	f.client.LoginFn = func(request api.LoginRequest) (*api.AuthResult, error) {
		require.Equal(t, testUsername, request.Username)
		require.Equal(t, testPassword, request.Password)
		return successResult(), nil
	}

	result, err := f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: testPassword})
	require.NoError(t, err)
	require.True(t, result.Success)

	current := f.readSession(t)
	require.True(t, current.IsLoggedIn)
	require.Equal(t, testUserID, current.UserID)
	require.Equal(t, testUsername, current.Username)
	require.Equal(t, testEmail, current.Email)
	require.Empty(t, current.DisplayName)
	require.Equal(t, testToken, current.AccessToken)
	require.Equal(t, testRefreshTok, current.RefreshToken)
}

func TestRegisterSuccessCommitsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.client.RegisterFn = func(request api.RegisterRequest) (*api.AuthResult, error) {
		result := successResult()
		result.User.DisplayName = utils.Ptr("Alice")
		return result, nil
	}

	_, err := f.manager.Register(context.Background(), api.RegisterRequest{
		Username: testUsername,
		Email:    testEmail,
		Password: testPassword,
	})
	require.NoError(t, err)

	current := f.readSession(t)
	require.True(t, current.IsLoggedIn)
	require.Equal(t, "Alice", current.DisplayName)
	require.Equal(t, testToken, current.AccessToken)
}

func TestLoginServerRejectionLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	before := f.readSession(t)

	f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
		return &api.AuthResult{Success: false, Message: utils.Ptr("bad credentials")}, nil
	}

	_, err := f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: "wrong"})
	require.ErrorIs(t, err, auth.RejectedErr)
	require.Equal(t, before, f.readSession(t))
}

func TestLoginTransportFailureLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	before := f.readSession(t)

	f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
		return nil, errors.New("connection refused")
	}

	_, err := f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: testPassword})
	require.ErrorIs(t, err, auth.TransportErr)
	require.Equal(t, before, f.readSession(t))
}

func TestLogin4xxIsRejection(t *testing.T) {
	f := setupTestFixture(t)

	f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
		return nil, &api.APIError{StatusCode: 401, Message: "unauthorized"}
	}

	_, err := f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: "wrong"})
	require.ErrorIs(t, err, auth.RejectedErr)
}

// A nominally successful response without both tokens must not mark the
// session logged in.
func TestLoginSuccessWithoutTokensIsRejected(t *testing.T) {
	for name, result := range map[string]*api.AuthResult{
		"no tokens":        {Success: true, User: &api.User{UserID: testUserID}},
		"no refresh token": {Success: true, Token: utils.Ptr(testToken)},
		"no access token":  {Success: true, RefreshToken: utils.Ptr(testRefreshTok)},
	} {
		t.Run(name, func(t *testing.T) {
			f := setupTestFixture(t)
			before := f.readSession(t)

			f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
				return result, nil
			}

			_, err := f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: testPassword})
			require.ErrorIs(t, err, auth.RejectedErr)
			require.Equal(t, before, f.readSession(t))
			require.False(t, f.readSession(t).IsLoggedIn)
		})
	}
}

func TestLogoutWithoutTokenClearsLocallyWithoutNetworkCall(t *testing.T) {
	f := setupTestFixture(t)
	// Leftover profile fields but no token, e.g. after a partial install.
	require.NoError(t, f.store.Update(context.Background(), session.Fields{Username: utils.Ptr(testUsername)}))

	err := f.manager.Logout(context.Background())
	require.NoError(t, err)
	require.Zero(t, f.client.TotalCalls())
	require.Equal(t, session.Defaults(), f.readSession(t))
}

func TestLogoutRemoteFailureLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	f.loginSession(t)
	before := f.readSession(t)

	f.client.LogoutFn = func(string) (api.StatusReply, error) {
		return nil, errors.New("connection reset")
	}

	err := f.manager.Logout(context.Background())
	require.ErrorIs(t, err, auth.TransportErr)
	require.Equal(t, before, f.readSession(t))
	require.True(t, f.readSession(t).IsLoggedIn)
}

func TestLogoutRemoteSuccessClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.loginSession(t)

	f.client.LogoutFn = func(token string) (api.StatusReply, error) {
		require.Equal(t, testToken, token)
		return api.StatusReply{"status": "logged out"}, nil
	}

	require.NoError(t, f.manager.Logout(context.Background()))
	require.Equal(t, session.Defaults(), f.readSession(t))
}

func TestRefreshWithoutTokenFailsWithoutNetworkCall(t *testing.T) {
	f := setupTestFixture(t)
	before := f.readSession(t)

	_, err := f.manager.RefreshToken(context.Background())
	require.ErrorIs(t, err, auth.NoRefreshTokenErr)
	require.Zero(t, f.client.TotalCalls())
	require.Equal(t, before, f.readSession(t))
}

func TestRefreshOverwritesOnlyTokens(t *testing.T) {
	f := setupTestFixture(t)
	f.loginSession(t)

	f.client.RefreshFn = func(refreshToken string) (*api.AuthResult, error) {
		require.Equal(t, testRefreshTok, refreshToken)
		return &api.AuthResult{
			Success:      true,
			Token:        utils.Ptr(testToken2),
			RefreshToken: utils.Ptr(testRefreshTok2),
		}, nil
	}

	_, err := f.manager.RefreshToken(context.Background())
	require.NoError(t, err)

	current := f.readSession(t)
	require.Equal(t, testToken2, current.AccessToken)
	require.Equal(t, testRefreshTok2, current.RefreshToken)
	require.True(t, current.IsLoggedIn)
	require.Equal(t, testUsername, current.Username)
}

func TestRefreshFailureLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	f.loginSession(t)
	before := f.readSession(t)

	f.client.RefreshFn = func(string) (*api.AuthResult, error) {
		return &api.AuthResult{Success: false, Message: utils.Ptr("refresh token revoked")}, nil
	}

	_, err := f.manager.RefreshToken(context.Background())
	require.ErrorIs(t, err, auth.RejectedErr)
	require.Equal(t, before, f.readSession(t))
}

func TestRefreshSuccessWithoutTokensIsRejected(t *testing.T) {
	f := setupTestFixture(t)
	f.loginSession(t)
	before := f.readSession(t)

	f.client.RefreshFn = func(string) (*api.AuthResult, error) {
		return &api.AuthResult{Success: true}, nil
	}

	_, err := f.manager.RefreshToken(context.Background())
	require.ErrorIs(t, err, auth.RejectedErr)
	require.Equal(t, before, f.readSession(t))
}

func TestGetProfileWithoutTokenFailsWithoutNetworkCall(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.GetProfile(context.Background())
	require.ErrorIs(t, err, auth.NotLoggedInErr)
	require.Zero(t, f.client.TotalCalls())
}

func TestGetProfileNeverMutatesSession(t *testing.T) {
	f := setupTestFixture(t)
	f.loginSession(t)
	before := f.readSession(t)

	f.client.GetProfileFn = func(token string) (*api.User, error) {
		require.Equal(t, testToken, token)
		return &api.User{UserID: testUserID, Username: testUsername, Email: testEmail}, nil
	}

	user, err := f.manager.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, testUserID, user.UserID)
	require.Equal(t, before, f.readSession(t))
}

func TestIsLoggedInReadsCommittedValue(t *testing.T) {
	f := setupTestFixture(t)

	loggedIn, err := f.manager.IsLoggedIn(context.Background())
	require.NoError(t, err)
	require.False(t, loggedIn)

	f.loginSession(t)

	loggedIn, err = f.manager.IsLoggedIn(context.Background())
	require.NoError(t, err)
	require.True(t, loggedIn)
}

// A login racing a logout must serialize: the final session matches whichever
// critical section committed last, never an interleaving of the two.
func TestConcurrentLoginAndLogoutSerialize(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := setupTestFixture(t)
		f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
			return successResult(), nil
		}
		f.client.LogoutFn = func(string) (api.StatusReply, error) {
			return api.StatusReply{"status": "logged out"}, nil
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.manager.Login(context.Background(), api.LoginRequest{Username: testUsername, Password: testPassword})
		}()
		go func() {
			defer wg.Done()
			_ = f.manager.Logout(context.Background())
		}()
		wg.Wait()

		current := f.readSession(t)
		if current.IsLoggedIn {
			require.Equal(t, testToken, current.AccessToken)
			require.Equal(t, testRefreshTok, current.RefreshToken)
			require.Equal(t, testUserID, current.UserID)
		} else {
			require.Equal(t, session.Defaults(), current)
		}
	}
}

// Scenario from the contract: defaults, then a successful login.
func TestLoginScenario(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, session.Defaults(), f.readSession(t))

	f.client.LoginFn = func(api.LoginRequest) (*api.AuthResult, error) {
		return &api.AuthResult{
			Success:      true,
			User:         &api.User{UserID: "u1", Username: "a", Email: "a@x.com"},
			Token:        utils.Ptr("T1"),
			RefreshToken: utils.Ptr("R1"),
		}, nil
	}

	_, err := f.manager.Login(context.Background(), api.LoginRequest{Username: "a", Password: "p"})
	require.NoError(t, err)

	current := f.readSession(t)
	require.True(t, current.IsLoggedIn)
	require.Equal(t, "u1", current.UserID)
	require.Equal(t, "T1", current.AccessToken)
	require.Equal(t, "R1", current.RefreshToken)
}
