package api

import (
	"context"
	"fmt"
)

// Client is the stateless transport to the monitor backend. Every operation
// takes its required parameters plus, where the endpoint demands it, a
// bearer token, and returns either the typed payload or an error. No retry,
// no caching: failures propagate unchanged to the caller.
type Client interface {
	// Authentication
	Register(ctx context.Context, request RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, request LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, token string) (StatusReply, error)
	GetProfile(ctx context.Context, token string) (*User, error)

	// Device management
	Devices(ctx context.Context, token string) ([]Device, error)
	CreateDevice(ctx context.Context, token string, request DeviceCreateRequest) (*Device, error)
	Device(ctx context.Context, token, deviceID string) (*Device, error)
	UpdateDevice(ctx context.Context, token, deviceID string, request DeviceUpdateRequest) (*Device, error)
	DeleteDevice(ctx context.Context, token, deviceID string) (StatusReply, error)
	BindDevice(ctx context.Context, token, deviceID, pairedDeviceID string) (StatusReply, error)
	UnbindDevice(ctx context.Context, token, deviceID string) (StatusReply, error)

	// Video streams
	StreamStatus(ctx context.Context, token, deviceID string) (StreamStatus, error)
	StartStream(ctx context.Context, token, deviceID string) (StatusReply, error)
	StopStream(ctx context.Context, token, deviceID string) (StatusReply, error)

	// Two-way audio
	StartTalk(ctx context.Context, token, deviceID string) (StatusReply, error)
	StopTalk(ctx context.Context, token, deviceID string) (StatusReply, error)
	AudioStatus(ctx context.Context, token, deviceID string) (AudioStatus, error)
	MuteAudio(ctx context.Context, token, deviceID string, muted bool) (StatusReply, error)
	SetVolume(ctx context.Context, token, deviceID string, volume int) (StatusReply, error)
}

// APIError is a response from the backend with a non-success status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the backend rejected the request outright
// (4xx) as opposed to failing to serve it.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
