// Package api defines the wire models and the client interface for the
// monitor backend's REST API.
package api

// Device types accepted by the backend.
const (
	DeviceTypeCamera = "CAMERA"
	DeviceTypeViewer = "VIEWER"
)

// User is a user profile as returned by the backend.
type User struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// LoginRequest carries login credentials. Never persisted.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest carries registration details. Never persisted.
type RegisterRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name,omitempty"`
}

// AuthResult is the normalized outcome envelope returned by every remote
// authentication call. It is transient; only selected fields are folded into
// the persisted Session.
type AuthResult struct {
	Success      bool    `json:"success"`
	Message      *string `json:"message,omitempty"`
	User         *User   `json:"user,omitempty"`
	Token        *string `json:"token,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	TokenExpiry  *int64  `json:"token_expiry,omitempty"`
}

// Device describes a registered camera or viewer device.
type Device struct {
	DeviceID       string  `json:"device_id"`
	DeviceName     string  `json:"device_name"`
	DeviceType     string  `json:"device_type"`
	IsOnline       bool    `json:"is_online"`
	LastSeen       *string `json:"last_seen,omitempty"`
	IsPaired       bool    `json:"is_paired"`
	PairedDeviceID *string `json:"paired_device_id,omitempty"`
	CreatedAt      *string `json:"created_at,omitempty"`
}

// DeviceCreateRequest registers a new device under the current user.
type DeviceCreateRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
}

// DeviceUpdateRequest modifies a registered device. Nil fields are left
// unchanged by the backend.
type DeviceUpdateRequest struct {
	DeviceName *string `json:"device_name,omitempty"`
	ServerURL  *string `json:"server_url,omitempty"`
}

// StatusReply is the status-map envelope returned by control endpoints.
type StatusReply map[string]string

// Status returns the "status" entry, or empty when absent.
func (r StatusReply) Status() string {
	return r["status"]
}

// StreamStatus is the opaque status payload for a device's video stream.
type StreamStatus map[string]any

// AudioStatus is the opaque status payload for a device's audio channel.
type AudioStatus map[string]any
