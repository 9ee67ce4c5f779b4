// Package monitor drives device registration, pairing and stream/audio
// control for the installation's device.
package monitor

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/babymonitor/go-monitor-client/api"
	"github.com/babymonitor/go-monitor-client/auth"
	"github.com/babymonitor/go-monitor-client/internal/utils"
	"github.com/babymonitor/go-monitor-client/session"
)

// NoDeviceErr means the operation needs a registered device and the session
// holds no device id.
var NoDeviceErr = errors.New("no registered device")

// Manager wraps the device, stream and audio endpoints. It adds the bearer
// token and device-id bookkeeping from the session; payloads pass through
// uninterpreted.
type Manager struct {
	client      api.Client
	store       session.Store
	logger      zerolog.Logger
	newDeviceID func() string
}

// ManagerOption modifies a Manager during construction.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDeviceIDGenerator sets the device id generator (primarily for testing)
func WithDeviceIDGenerator(gen func() string) ManagerOption {
	return func(m *Manager) {
		m.newDeviceID = gen
	}
}

// NewManager creates a Manager with required dependencies.
func NewManager(client api.Client, store session.Store, options ...ManagerOption) (*Manager, error) {
	if client == nil {
		return nil, errors.New("[monitor.NewManager] api client is required")
	}
	if store == nil {
		return nil, errors.New("[monitor.NewManager] session store is required")
	}

	m := &Manager{
		client:      client,
		store:       store,
		logger:      zerolog.Nop(),
		newDeviceID: func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// current reads the session and enforces the logged-in precondition shared
// by every operation in this package.
func (m *Manager) current(ctx context.Context) (session.Session, error) {
	current, err := m.store.Read(ctx)
	if err != nil {
		return session.Session{}, errors.Wrap(auth.StorageErr, err.Error())
	}
	if current.AccessToken == "" {
		return session.Session{}, errors.Wrap(auth.NotLoggedInErr, "device operations require a stored access token")
	}
	return current, nil
}

// RegisterDevice registers this installation's device with the backend. The
// device id is generated once and persisted; re-registering reuses it.
func (m *Manager) RegisterDevice(ctx context.Context, name, deviceType string) (*api.Device, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}

	deviceID := current.DeviceID
	if deviceID == "" {
		deviceID = m.newDeviceID()
	}

	device, err := m.client.CreateDevice(ctx, current.AccessToken, api.DeviceCreateRequest{
		DeviceID:   deviceID,
		DeviceName: name,
		DeviceType: deviceType,
	})
	if err != nil {
		return nil, remoteErr("RegisterDevice", err)
	}

	if deviceID != current.DeviceID {
		if err := m.store.Update(ctx, session.Fields{DeviceID: utils.Ptr(deviceID)}); err != nil {
			return nil, errors.Wrap(auth.StorageErr, err.Error())
		}
	}
	m.logger.Info().Str("device_id", deviceID).Str("type", deviceType).Msg("device registered")
	return device, nil
}

// PairDevice binds this installation's device to a peer (camera to viewer
// or the other way around).
func (m *Manager) PairDevice(ctx context.Context, peerID string) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	if current.DeviceID == "" {
		return nil, errors.Wrap(NoDeviceErr, "pairing requires a registered device")
	}

	reply, err := m.client.BindDevice(ctx, current.AccessToken, current.DeviceID, peerID)
	if err != nil {
		return nil, remoteErr("PairDevice", err)
	}
	m.logger.Info().Str("device_id", current.DeviceID).Str("peer_id", peerID).Msg("device paired")
	return reply, nil
}

// UnpairDevice removes this installation's device pairing.
func (m *Manager) UnpairDevice(ctx context.Context) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	if current.DeviceID == "" {
		return nil, errors.Wrap(NoDeviceErr, "unpairing requires a registered device")
	}

	reply, err := m.client.UnbindDevice(ctx, current.AccessToken, current.DeviceID)
	if err != nil {
		return nil, remoteErr("UnpairDevice", err)
	}
	return reply, nil
}

// Devices lists the user's registered devices.
func (m *Manager) Devices(ctx context.Context) ([]api.Device, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	devices, err := m.client.Devices(ctx, current.AccessToken)
	if err != nil {
		return nil, remoteErr("Devices", err)
	}
	return devices, nil
}

// RemoveDevice deletes a device by id.
func (m *Manager) RemoveDevice(ctx context.Context, deviceID string) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.DeleteDevice(ctx, current.AccessToken, deviceID)
	if err != nil {
		return nil, remoteErr("RemoveDevice", err)
	}
	return reply, nil
}

// RenameDevice changes a device's display name.
func (m *Manager) RenameDevice(ctx context.Context, deviceID, name string) (*api.Device, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	device, err := m.client.UpdateDevice(ctx, current.AccessToken, deviceID, api.DeviceUpdateRequest{
		DeviceName: utils.Ptr(name),
	})
	if err != nil {
		return nil, remoteErr("RenameDevice", err)
	}
	return device, nil
}

// targetDevice resolves an explicit device id, falling back to the stored
// one.
func (m *Manager) targetDevice(current session.Session, deviceID string) (string, error) {
	if deviceID != "" {
		return deviceID, nil
	}
	if current.DeviceID == "" {
		return "", errors.Wrap(NoDeviceErr, "no device id given and none registered")
	}
	return current.DeviceID, nil
}

// StartStream starts a device's video stream.
func (m *Manager) StartStream(ctx context.Context, deviceID string) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.StartStream(ctx, current.AccessToken, target)
	if err != nil {
		return nil, remoteErr("StartStream", err)
	}
	return reply, nil
}

// StopStream stops a device's video stream.
func (m *Manager) StopStream(ctx context.Context, deviceID string) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.StopStream(ctx, current.AccessToken, target)
	if err != nil {
		return nil, remoteErr("StopStream", err)
	}
	return reply, nil
}

// StreamStatus fetches a device's stream state.
func (m *Manager) StreamStatus(ctx context.Context, deviceID string) (api.StreamStatus, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	status, err := m.client.StreamStatus(ctx, current.AccessToken, target)
	if err != nil {
		return nil, remoteErr("StreamStatus", err)
	}
	return status, nil
}

// StartTalk opens the talkback channel to a device.
func (m *Manager) StartTalk(ctx context.Context, deviceID string) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.StartTalk(ctx, current.AccessToken, target)
	if err != nil {
		return nil, remoteErr("StartTalk", err)
	}
	return reply, nil
}

// StopTalk closes the talkback channel to a device.
func (m *Manager) StopTalk(ctx context.Context, deviceID string) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.StopTalk(ctx, current.AccessToken, target)
	if err != nil {
		return nil, remoteErr("StopTalk", err)
	}
	return reply, nil
}

// AudioStatus fetches a device's audio state.
func (m *Manager) AudioStatus(ctx context.Context, deviceID string) (api.AudioStatus, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	status, err := m.client.AudioStatus(ctx, current.AccessToken, target)
	if err != nil {
		return nil, remoteErr("AudioStatus", err)
	}
	return status, nil
}

// Mute mutes or unmutes a device.
func (m *Manager) Mute(ctx context.Context, deviceID string, muted bool) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.MuteAudio(ctx, current.AccessToken, target, muted)
	if err != nil {
		return nil, remoteErr("Mute", err)
	}
	return reply, nil
}

// SetVolume sets a device's playback volume.
func (m *Manager) SetVolume(ctx context.Context, deviceID string, volume int) (api.StatusReply, error) {
	current, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.targetDevice(current, deviceID)
	if err != nil {
		return nil, err
	}
	reply, err := m.client.SetVolume(ctx, current.AccessToken, target, volume)
	if err != nil {
		return nil, remoteErr("SetVolume", err)
	}
	return reply, nil
}

// remoteErr mirrors the auth package's taxonomy mapping for these
// pass-through endpoints.
func remoteErr(op string, err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		return errors.Wrapf(auth.RejectedErr, "[%s] %s", op, apiErr.Message)
	}
	return errors.Wrapf(auth.TransportErr, "[%s] %v", op, err)
}
