// Package rest implements api.Client over plain HTTP/JSON.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/babymonitor/go-monitor-client/api"
)

var _ api.Client = (*Client)(nil)

const defaultTimeout = 15 * time.Second

// BaseURLProvider yields the backend base URL for a request. Reading it per
// call lets the persisted server_url win over whatever the client was
// constructed with.
type BaseURLProvider func(ctx context.Context) (string, error)

// StaticBaseURL is a BaseURLProvider that always returns url.
func StaticBaseURL(rawURL string) BaseURLProvider {
	return func(context.Context) (string, error) {
		return rawURL, nil
	}
}

// Client talks to the monitor backend. It holds no session state; tokens are
// passed per call.
type Client struct {
	httpClient *http.Client
	baseURL    BaseURLProvider
	logger     zerolog.Logger
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. A timeout surfaces as an
// ordinary transport error.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the backend reachable through baseURL.
func New(baseURL BaseURLProvider, options ...Option) (*Client, error) {
	if baseURL == nil {
		return nil, errors.New("[rest.New] base URL provider is required")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// errorBody covers the error envelopes the backend produces.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	base, err := c.baseURL(ctx)
	if err != nil {
		return errors.Wrap(err, "[Client.do] resolve base URL")
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.do] encode %s %s body", method, path)
		}
		reqBody = bytes.NewReader(encoded)
	}

	rawURL := strings.TrimRight(base, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] build %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("url", rawURL).Msg("api request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode %s %s response", method, path)
	}
	return nil
}

func (c *Client) errorFrom(resp *http.Response) error {
	apiErr := &api.APIError{StatusCode: resp.StatusCode}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Detail
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	c.logger.Debug().Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("api error response")
	return apiErr
}

func devicePath(deviceID, suffix string) string {
	return "/devices/" + url.PathEscape(deviceID) + suffix
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, request api.RegisterRequest) (*api.AuthResult, error) {
	var result api.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for tokens.
func (c *Client) Login(ctx context.Context, request api.LoginRequest) (*api.AuthResult, error) {
	var result api.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh exchanges a refresh token for a new token pair. The body is the
// bare JSON-encoded token string.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.AuthResult, error) {
	var result api.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshToken, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the bearer token server-side.
func (c *Client) Logout(ctx context.Context, token string) (api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// GetProfile fetches the profile of the token's user.
func (c *Client) GetProfile(ctx context.Context, token string) (*api.User, error) {
	var user api.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Devices lists the user's registered devices.
func (c *Client) Devices(ctx context.Context, token string) ([]api.Device, error) {
	var devices []api.Device
	if err := c.do(ctx, http.MethodGet, "/devices/", token, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// CreateDevice registers a new device under the user.
func (c *Client) CreateDevice(ctx context.Context, token string, request api.DeviceCreateRequest) (*api.Device, error) {
	var device api.Device
	if err := c.do(ctx, http.MethodPost, "/devices/", token, request, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Device fetches one device.
func (c *Client) Device(ctx context.Context, token, deviceID string) (*api.Device, error) {
	var device api.Device
	if err := c.do(ctx, http.MethodGet, devicePath(deviceID, ""), token, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// UpdateDevice modifies a device.
func (c *Client) UpdateDevice(ctx context.Context, token, deviceID string, request api.DeviceUpdateRequest) (*api.Device, error) {
	var device api.Device
	if err := c.do(ctx, http.MethodPut, devicePath(deviceID, ""), token, request, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, token, deviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodDelete, devicePath(deviceID, ""), token, nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// BindDevice pairs a device with a peer. The body is the bare JSON-encoded
// peer device id.
func (c *Client) BindDevice(ctx context.Context, token, deviceID, pairedDeviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodPost, devicePath(deviceID, "/bind"), token, pairedDeviceID, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// UnbindDevice removes a device's pairing.
func (c *Client) UnbindDevice(ctx context.Context, token, deviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodPost, devicePath(deviceID, "/unbind"), token, nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// StreamStatus fetches the stream state of a device.
func (c *Client) StreamStatus(ctx context.Context, token, deviceID string) (api.StreamStatus, error) {
	var status api.StreamStatus
	if err := c.do(ctx, http.MethodGet, "/streams/"+url.PathEscape(deviceID), token, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// StartStream starts a device's video stream.
func (c *Client) StartStream(ctx context.Context, token, deviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodPost, "/streams/"+url.PathEscape(deviceID)+"/start", token, nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// StopStream stops a device's video stream.
func (c *Client) StopStream(ctx context.Context, token, deviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodPost, "/streams/"+url.PathEscape(deviceID)+"/stop", token, nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// StartTalk opens the talkback channel to a device.
func (c *Client) StartTalk(ctx context.Context, token, deviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	body := map[string]string{"device_id": deviceID}
	if err := c.do(ctx, http.MethodPost, "/audio/start_talk", token, body, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// StopTalk closes the talkback channel to a device.
func (c *Client) StopTalk(ctx context.Context, token, deviceID string) (api.StatusReply, error) {
	var reply api.StatusReply
	body := map[string]string{"device_id": deviceID}
	if err := c.do(ctx, http.MethodPost, "/audio/stop_talk", token, body, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// AudioStatus fetches the audio state of a device.
func (c *Client) AudioStatus(ctx context.Context, token, deviceID string) (api.AudioStatus, error) {
	var status api.AudioStatus
	if err := c.do(ctx, http.MethodGet, "/audio/status/"+url.PathEscape(deviceID), token, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// MuteAudio mutes or unmutes a device.
func (c *Client) MuteAudio(ctx context.Context, token, deviceID string, muted bool) (api.StatusReply, error) {
	var reply api.StatusReply
	body := map[string]any{"device_id": deviceID, "muted": muted}
	if err := c.do(ctx, http.MethodPost, "/audio/mute", token, body, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// SetVolume sets a device's playback volume.
func (c *Client) SetVolume(ctx context.Context, token, deviceID string, volume int) (api.StatusReply, error) {
	var reply api.StatusReply
	body := map[string]any{"device_id": deviceID, "volume": volume}
	if err := c.do(ctx, http.MethodPost, "/audio/volume", token, body, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}
