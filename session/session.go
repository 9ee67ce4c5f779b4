package session

// DefaultServerURL is the emulator loopback address used until the client is
// pointed at a real backend.
const DefaultServerURL = "http://10.0.2.2:8000"

// Keys under which the session fields are persisted.
const (
	KeyIsLoggedIn   = "is_logged_in"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
	KeyEmail        = "email"
	KeyDisplayName  = "display_name"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyDeviceID     = "device_id"
	KeyServerURL    = "server_url"
)

// Session is the persisted authentication and device-identity state for the
// current installation. There is exactly one Session per installation; it
// survives restarts and is mutated only through auth.Manager.
type Session struct {
	IsLoggedIn   bool   `json:"is_logged_in"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	DeviceID     string `json:"device_id"`
	ServerURL    string `json:"server_url"`
}

// Defaults returns the Session a fresh installation starts with.
func Defaults() Session {
	return Session{ServerURL: DefaultServerURL}
}

// Fields is a partial Session update. Nil fields are left untouched; every
// non-nil field is applied as part of one atomic merge, so related fields
// (tokens and the logged-in flag) must be grouped into a single Fields value.
type Fields struct {
	IsLoggedIn   *bool
	UserID       *string
	Username     *string
	Email        *string
	DisplayName  *string
	AccessToken  *string
	RefreshToken *string
	DeviceID     *string
	ServerURL    *string
}

// Apply merges f into s and returns the result.
func (f Fields) Apply(s Session) Session {
	if f.IsLoggedIn != nil {
		s.IsLoggedIn = *f.IsLoggedIn
	}
	if f.UserID != nil {
		s.UserID = *f.UserID
	}
	if f.Username != nil {
		s.Username = *f.Username
	}
	if f.Email != nil {
		s.Email = *f.Email
	}
	if f.DisplayName != nil {
		s.DisplayName = *f.DisplayName
	}
	if f.AccessToken != nil {
		s.AccessToken = *f.AccessToken
	}
	if f.RefreshToken != nil {
		s.RefreshToken = *f.RefreshToken
	}
	if f.DeviceID != nil {
		s.DeviceID = *f.DeviceID
	}
	if f.ServerURL != nil {
		s.ServerURL = *f.ServerURL
	}
	return s
}

// IsZero reports whether no field of the update is set.
func (f Fields) IsZero() bool {
	return f.IsLoggedIn == nil && f.UserID == nil && f.Username == nil &&
		f.Email == nil && f.DisplayName == nil && f.AccessToken == nil &&
		f.RefreshToken == nil && f.DeviceID == nil && f.ServerURL == nil
}
