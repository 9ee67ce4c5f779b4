// Package apifake provides a scripted api.Client for tests.
package apifake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/babymonitor/go-monitor-client/api"
)

var _ api.Client = (*FakeClient)(nil)

// FakeClient implements api.Client with per-method scripts and call
// counters. A method without a script returns an error, so tests fail loudly
// when an unexpected endpoint is hit.
type FakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	RegisterFn     func(request api.RegisterRequest) (*api.AuthResult, error)
	LoginFn        func(request api.LoginRequest) (*api.AuthResult, error)
	RefreshFn      func(refreshToken string) (*api.AuthResult, error)
	LogoutFn       func(token string) (api.StatusReply, error)
	GetProfileFn   func(token string) (*api.User, error)
	DevicesFn      func(token string) ([]api.Device, error)
	CreateDeviceFn func(token string, request api.DeviceCreateRequest) (*api.Device, error)
	DeviceFn       func(token, deviceID string) (*api.Device, error)
	UpdateDeviceFn func(token, deviceID string, request api.DeviceUpdateRequest) (*api.Device, error)
	DeleteDeviceFn func(token, deviceID string) (api.StatusReply, error)
	BindDeviceFn   func(token, deviceID, pairedDeviceID string) (api.StatusReply, error)
	UnbindDeviceFn func(token, deviceID string) (api.StatusReply, error)
	StreamStatusFn func(token, deviceID string) (api.StreamStatus, error)
	StartStreamFn  func(token, deviceID string) (api.StatusReply, error)
	StopStreamFn   func(token, deviceID string) (api.StatusReply, error)
	StartTalkFn    func(token, deviceID string) (api.StatusReply, error)
	StopTalkFn     func(token, deviceID string) (api.StatusReply, error)
	AudioStatusFn  func(token, deviceID string) (api.AudioStatus, error)
	MuteAudioFn    func(token, deviceID string, muted bool) (api.StatusReply, error)
	SetVolumeFn    func(token, deviceID string, volume int) (api.StatusReply, error)
}

// NewFakeClient creates an unscripted fake.
func NewFakeClient() *FakeClient {
	return &FakeClient{calls: make(map[string]int)}
}

// Calls returns how many times the named method was invoked.
func (f *FakeClient) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of invocations across all methods.
func (f *FakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *FakeClient) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func notScripted(method string) error {
	return errors.Errorf("apifake: %s not scripted", method)
}

func (f *FakeClient) Register(_ context.Context, request api.RegisterRequest) (*api.AuthResult, error) {
	f.record("Register")
	if f.RegisterFn == nil {
		return nil, notScripted("Register")
	}
	return f.RegisterFn(request)
}

func (f *FakeClient) Login(_ context.Context, request api.LoginRequest) (*api.AuthResult, error) {
	f.record("Login")
	if f.LoginFn == nil {
		return nil, notScripted("Login")
	}
	return f.LoginFn(request)
}

func (f *FakeClient) Refresh(_ context.Context, refreshToken string) (*api.AuthResult, error) {
	f.record("Refresh")
	if f.RefreshFn == nil {
		return nil, notScripted("Refresh")
	}
	return f.RefreshFn(refreshToken)
}

func (f *FakeClient) Logout(_ context.Context, token string) (api.StatusReply, error) {
	f.record("Logout")
	if f.LogoutFn == nil {
		return nil, notScripted("Logout")
	}
	return f.LogoutFn(token)
}

func (f *FakeClient) GetProfile(_ context.Context, token string) (*api.User, error) {
	f.record("GetProfile")
	if f.GetProfileFn == nil {
		return nil, notScripted("GetProfile")
	}
	return f.GetProfileFn(token)
}

func (f *FakeClient) Devices(_ context.Context, token string) ([]api.Device, error) {
	f.record("Devices")
	if f.DevicesFn == nil {
		return nil, notScripted("Devices")
	}
	return f.DevicesFn(token)
}

func (f *FakeClient) CreateDevice(_ context.Context, token string, request api.DeviceCreateRequest) (*api.Device, error) {
	f.record("CreateDevice")
	if f.CreateDeviceFn == nil {
		return nil, notScripted("CreateDevice")
	}
	return f.CreateDeviceFn(token, request)
}

func (f *FakeClient) Device(_ context.Context, token, deviceID string) (*api.Device, error) {
	f.record("Device")
	if f.DeviceFn == nil {
		return nil, notScripted("Device")
	}
	return f.DeviceFn(token, deviceID)
}

func (f *FakeClient) UpdateDevice(_ context.Context, token, deviceID string, request api.DeviceUpdateRequest) (*api.Device, error) {
	f.record("UpdateDevice")
	if f.UpdateDeviceFn == nil {
		return nil, notScripted("UpdateDevice")
	}
	return f.UpdateDeviceFn(token, deviceID, request)
}

func (f *FakeClient) DeleteDevice(_ context.Context, token, deviceID string) (api.StatusReply, error) {
	f.record("DeleteDevice")
	if f.DeleteDeviceFn == nil {
		return nil, notScripted("DeleteDevice")
	}
	return f.DeleteDeviceFn(token, deviceID)
}

func (f *FakeClient) BindDevice(_ context.Context, token, deviceID, pairedDeviceID string) (api.StatusReply, error) {
	f.record("BindDevice")
	if f.BindDeviceFn == nil {
		return nil, notScripted("BindDevice")
	}
	return f.BindDeviceFn(token, deviceID, pairedDeviceID)
}

func (f *FakeClient) UnbindDevice(_ context.Context, token, deviceID string) (api.StatusReply, error) {
	f.record("UnbindDevice")
	if f.UnbindDeviceFn == nil {
		return nil, notScripted("UnbindDevice")
	}
	return f.UnbindDeviceFn(token, deviceID)
}

func (f *FakeClient) StreamStatus(_ context.Context, token, deviceID string) (api.StreamStatus, error) {
	f.record("StreamStatus")
	if f.StreamStatusFn == nil {
		return nil, notScripted("StreamStatus")
	}
	return f.StreamStatusFn(token, deviceID)
}

func (f *FakeClient) StartStream(_ context.Context, token, deviceID string) (api.StatusReply, error) {
	f.record("StartStream")
	if f.StartStreamFn == nil {
		return nil, notScripted("StartStream")
	}
	return f.StartStreamFn(token, deviceID)
}

func (f *FakeClient) StopStream(_ context.Context, token, deviceID string) (api.StatusReply, error) {
	f.record("StopStream")
	if f.StopStreamFn == nil {
		return nil, notScripted("StopStream")
	}
	return f.StopStreamFn(token, deviceID)
}

func (f *FakeClient) StartTalk(_ context.Context, token, deviceID string) (api.StatusReply, error) {
	f.record("StartTalk")
	if f.StartTalkFn == nil {
		return nil, notScripted("StartTalk")
	}
	return f.StartTalkFn(token, deviceID)
}

func (f *FakeClient) StopTalk(_ context.Context, token, deviceID string) (api.StatusReply, error) {
	f.record("StopTalk")
	if f.StopTalkFn == nil {
		return nil, notScripted("StopTalk")
	}
	return f.StopTalkFn(token, deviceID)
}

func (f *FakeClient) AudioStatus(_ context.Context, token, deviceID string) (api.AudioStatus, error) {
	f.record("AudioStatus")
	if f.AudioStatusFn == nil {
		return nil, notScripted("AudioStatus")
	}
	return f.AudioStatusFn(token, deviceID)
}

func (f *FakeClient) MuteAudio(_ context.Context, token, deviceID string, muted bool) (api.StatusReply, error) {
	f.record("MuteAudio")
	if f.MuteAudioFn == nil {
		return nil, notScripted("MuteAudio")
	}
	return f.MuteAudioFn(token, deviceID, muted)
}

func (f *FakeClient) SetVolume(_ context.Context, token, deviceID string, volume int) (api.StatusReply, error) {
	f.record("SetVolume")
	if f.SetVolumeFn == nil {
		return nil, notScripted("SetVolume")
	}
	return f.SetVolumeFn(token, deviceID, volume)
}
