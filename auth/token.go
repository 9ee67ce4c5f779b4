package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenExpiry extracts the exp claim from an access token without verifying
// the signature. The client holds no signing key; expiry only decides when
// to refresh, never whether to trust the token.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[TokenExpiry] parse token")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[TokenExpiry] exp claim")
	}
	if exp == nil {
		return time.Time{}, errors.New("[TokenExpiry] token has no exp claim")
	}
	return exp.Time, nil
}

// EnsureFresh refreshes the token pair when the stored access token expires
// within leeway (or its expiry cannot be determined). A token with enough
// life left is a no-op with zero network calls. Serialized with the other
// mutating operations.
func (m *Manager) EnsureFresh(ctx context.Context, leeway time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.store.Read(ctx)
	if err != nil {
		return errors.Wrap(StorageErr, err.Error())
	}
	if current.AccessToken == "" {
		return errors.Wrap(NotLoggedInErr, "nothing to refresh")
	}

	expiry, err := TokenExpiry(current.AccessToken)
	if err == nil && m.nowTime().Add(leeway).Before(expiry) {
		return nil
	}

	if _, err := m.refreshLocked(ctx); err != nil {
		return err
	}
	return nil
}
