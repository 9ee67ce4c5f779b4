package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/babymonitor/go-monitor-client/api"
	"github.com/babymonitor/go-monitor-client/auth"
	"github.com/babymonitor/go-monitor-client/internal/utils"
	"github.com/babymonitor/go-monitor-client/session"
)

func mintToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID,
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := mintToken(t, expiry)

	parsed, err := auth.TokenExpiry(token)
	require.NoError(t, err)
	require.True(t, parsed.Equal(expiry))
}

func TestTokenExpiryRejectsGarbage(t *testing.T) {
	_, err := auth.TokenExpiry("not-a-jwt")
	require.Error(t, err)
}

func TestTokenExpiryRequiresExpClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": testUserID})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = auth.TokenExpiry(signed)
	require.Error(t, err)
}

func TestEnsureFreshWithLiveTokenMakesNoNetworkCall(t *testing.T) {
	f := setupTestFixture(t)
	token := mintToken(t, time.Now().Add(time.Hour))
	require.NoError(t, f.store.Update(context.Background(), session.Fields{
		AccessToken:  utils.Ptr(token),
		RefreshToken: utils.Ptr(testRefreshTok),
		IsLoggedIn:   utils.Ptr(true),
	}))

	err := f.manager.EnsureFresh(context.Background(), time.Minute)
	require.NoError(t, err)
	require.Zero(t, f.client.TotalCalls())
}

func TestEnsureFreshRefreshesExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	expired := mintToken(t, time.Now().Add(-time.Minute))
	require.NoError(t, f.store.Update(context.Background(), session.Fields{
		AccessToken:  utils.Ptr(expired),
		RefreshToken: utils.Ptr(testRefreshTok),
		IsLoggedIn:   utils.Ptr(true),
	}))

	f.client.RefreshFn = func(string) (*api.AuthResult, error) {
		return &api.AuthResult{
			Success:      true,
			Token:        utils.Ptr(testToken2),
			RefreshToken: utils.Ptr(testRefreshTok2),
		}, nil
	}

	err := f.manager.EnsureFresh(context.Background(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, f.client.Calls("Refresh"))

	current := f.readSession(t)
	require.Equal(t, testToken2, current.AccessToken)
	require.Equal(t, testRefreshTok2, current.RefreshToken)
}

func TestEnsureFreshRefreshesTokenInsideLeeway(t *testing.T) {
	f := setupTestFixture(t)
	closeToExpiry := mintToken(t, time.Now().Add(30*time.Second))
	require.NoError(t, f.store.Update(context.Background(), session.Fields{
		AccessToken:  utils.Ptr(closeToExpiry),
		RefreshToken: utils.Ptr(testRefreshTok),
		IsLoggedIn:   utils.Ptr(true),
	}))

	f.client.RefreshFn = func(string) (*api.AuthResult, error) {
		return &api.AuthResult{
			Success:      true,
			Token:        utils.Ptr(testToken2),
			RefreshToken: utils.Ptr(testRefreshTok2),
		}, nil
	}

	err := f.manager.EnsureFresh(context.Background(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, f.client.Calls("Refresh"))
}

func TestEnsureFreshRequiresAccessToken(t *testing.T) {
	f := setupTestFixture(t)

	err := f.manager.EnsureFresh(context.Background(), time.Minute)
	require.ErrorIs(t, err, auth.NotLoggedInErr)
	require.Zero(t, f.client.TotalCalls())
}

// Opaque (non-JWT) tokens cannot be dated, so EnsureFresh refreshes them.
func TestEnsureFreshRefreshesOpaqueToken(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Update(context.Background(), session.Fields{
		AccessToken:  utils.Ptr("opaque-token"),
		RefreshToken: utils.Ptr(testRefreshTok),
		IsLoggedIn:   utils.Ptr(true),
	}))

	f.client.RefreshFn = func(string) (*api.AuthResult, error) {
		return &api.AuthResult{
			Success:      true,
			Token:        utils.Ptr(testToken2),
			RefreshToken: utils.Ptr(testRefreshTok2),
		}, nil
	}

	err := f.manager.EnsureFresh(context.Background(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, f.client.Calls("Refresh"))
}
