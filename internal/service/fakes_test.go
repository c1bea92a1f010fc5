package service

import (
	"context"
	"sync"

	"climate_control/internal/link"
	"climate_control/internal/models"

	"github.com/stretchr/testify/mock"
)

// mockLink is a testify mock of link.Link.
type mockLink struct {
	mock.Mock
}

func (m *mockLink) ListAdapters(ctx context.Context) ([]string, error) {
	args := m.Called()
	adapters, _ := args.Get(0).([]string)
	return adapters, args.Error(1)
}

func (m *mockLink) ScanDevices(ctx context.Context, adapter string) ([]string, error) {
	args := m.Called(adapter)
	devices, _ := args.Get(0).([]string)
	return devices, args.Error(1)
}

func (m *mockLink) Connect(ctx context.Context, adapter, deviceID string) error {
	return m.Called(adapter, deviceID).Error(0)
}

func (m *mockLink) Disconnect(ctx context.Context, adapter, deviceID string) error {
	return m.Called(adapter, deviceID).Error(0)
}

func (m *mockLink) Dispatch(ctx context.Context, adapter, deviceID string, cmd models.Command) error {
	return m.Called(ctx, adapter, deviceID, cmd).Error(0)
}

func (m *mockLink) Subscribe(ctx context.Context, adapter string) (link.Subscription, error) {
	args := m.Called(adapter)
	sub, _ := args.Get(0).(link.Subscription)
	return sub, args.Error(1)
}

// fakeSub is a stream the test feeds by hand. Close only records the call,
// so events sent afterwards model a handle that keeps delivering.
type fakeSub struct {
	ch chan models.DeviceStatusEvent

	mu     sync.Mutex
	closed bool
}

func newFakeSub() *fakeSub {
	return &fakeSub{ch: make(chan models.DeviceStatusEvent, 16)}
}

func (s *fakeSub) C() <-chan models.DeviceStatusEvent { return s.ch }

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSub) push(id string, mode models.OperatingMode) {
	s.ch <- models.DeviceStatusEvent{ID: id, Status: models.DeviceStatus{OperatingMode: mode}}
}

// fakeRecorder collects records; err is returned from every call.
type fakeRecorder struct {
	mu   sync.Mutex
	recs []models.StatusRecord
	err  error
}

func (r *fakeRecorder) Record(ctx context.Context, rec models.StatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return r.err
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs)
}

// staticSession reports a fixed adapter that is never torn down.
type staticSession struct{ adapter string }

func (s staticSession) ActiveAdapter() (string, bool) { return s.adapter, s.adapter != "" }

func (s staticSession) Lease() (string, <-chan struct{}, bool) {
	return s.adapter, nil, s.adapter != ""
}
