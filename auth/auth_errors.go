package auth

import "errors"

// Failure taxonomy for session operations. Callers distinguish outcomes with
// errors.Is; the UI layer owns any user-facing rendering.
var (
	// TransportErr: the backend could not be reached or failed to serve
	// the request. Not retried by this layer.
	TransportErr = errors.New("transport failure")

	// RejectedErr: the backend was reached but refused the request, e.g.
	// bad credentials or a duplicate registration.
	RejectedErr = errors.New("rejected by server")

	// NotLoggedInErr: the operation needs a stored access token and none
	// is present.
	NotLoggedInErr = errors.New("not logged in")

	// NoRefreshTokenErr: refresh was requested with no stored refresh
	// token.
	NoRefreshTokenErr = errors.New("no refresh token")

	// StorageErr: the session store failed. Previously committed state is
	// never silently lost; the operation aborts.
	StorageErr = errors.New("session storage failure")
)
