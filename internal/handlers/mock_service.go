package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"climate_control/internal/models"
	"climate_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDiscovery struct {
	adapters    []string
	devices     []string
	err         error
	lastAdapter string
}

func (m *mockDiscovery) ListAdapters(ctx context.Context) ([]string, error) {
	return m.adapters, m.err
}
func (m *mockDiscovery) ScanDevices(ctx context.Context, adapter string) ([]string, error) {
	m.lastAdapter = adapter
	return m.devices, m.err
}

type mockSessions struct {
	mu            sync.Mutex
	info          service.SessionInfo
	err           error
	lastAdapter   string
	reevaluated   int
	deactivated   int
	reevaluateErr error
}

func (m *mockSessions) Activate(ctx context.Context, adapter string) (service.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAdapter = adapter
	return m.info, m.err
}
func (m *mockSessions) Deactivate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deactivated++
	return m.err
}
func (m *mockSessions) Reevaluate(ctx context.Context) (service.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reevaluated++
	return m.info, m.reevaluateErr
}
func (m *mockSessions) Current() service.SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

func (m *mockSessions) reevaluateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reevaluated
}

type mockControl struct {
	err          error
	lastDevice   string
	lastTargetF  int
	lastCommand  models.Command
	connected    int
	disconnected int
}

func (m *mockControl) SetTemperature(ctx context.Context, deviceID string, targetF int) error {
	m.lastDevice = deviceID
	m.lastTargetF = targetF
	return m.err
}
func (m *mockControl) SendCommand(ctx context.Context, deviceID string, cmd models.Command) error {
	m.lastDevice = deviceID
	m.lastCommand = cmd
	return m.err
}
func (m *mockControl) Connect(ctx context.Context, deviceID string) error {
	m.lastDevice = deviceID
	m.connected++
	return m.err
}
func (m *mockControl) Disconnect(ctx context.Context, deviceID string) error {
	m.lastDevice = deviceID
	m.disconnected++
	return m.err
}

type mockMonitoring struct {
	view  service.StatusView
	views []service.StatusView
	err   error
}

func (m *mockMonitoring) GetStatus(deviceID string) (service.StatusView, error) {
	return m.view, m.err
}
func (m *mockMonitoring) ListStatuses() []service.StatusView {
	return m.views
}

type mockEventLog struct {
	resp       []models.DeviceEvent
	err        error
	lastFrom   time.Time
	lastTo     time.Time
	lastType   string
	lastDevice string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastDevice = f.DeviceID
	return m.resp, m.err
}

type mockHistory struct {
	recs      []models.StatusRecord
	err       error
	lastLimit int
}

func (m *mockHistory) Recent(ctx context.Context, deviceID string, limit int) ([]models.StatusRecord, error) {
	m.lastLimit = limit
	return m.recs, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
