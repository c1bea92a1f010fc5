package service

import (
	"context"

	"climate_control/internal/cache"
	"climate_control/internal/climate"
	"climate_control/internal/link"
	"climate_control/internal/logger"
	"climate_control/internal/models"
	"climate_control/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Discovery lists adapters and the devices reachable through them.
type Discovery interface {
	ListAdapters(ctx context.Context) ([]string, error)
	ScanDevices(ctx context.Context, adapter string) ([]string, error)
}

// Sessions selects the active adapter and keeps the status stream attached to it.
type Sessions interface {
	Activate(ctx context.Context, adapter string) (SessionInfo, error)
	Deactivate(ctx context.Context) error
	Reevaluate(ctx context.Context) (SessionInfo, error)
	Current() SessionInfo
}

// Control drives devices on the active adapter.
type Control interface {
	SetTemperature(ctx context.Context, deviceID string, targetF int) error
	SendCommand(ctx context.Context, deviceID string, cmd models.Command) error
	Connect(ctx context.Context, deviceID string) error
	Disconnect(ctx context.Context, deviceID string) error
}

// Monitoring exposes the last status received per device.
type Monitoring interface {
	GetStatus(deviceID string) (StatusView, error)
	ListStatuses() []StatusView
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// History exposes recorded status snapshots.
type History interface {
	Recent(ctx context.Context, deviceID string, limit int) ([]models.StatusRecord, error)
}

// Service aggregates all sub-services for the HTTP layer.
type Service struct {
	Authorization
	Discovery
	Sessions
	Control
	Monitoring
	EventLog
	History
}

// Deps carries everything NewService wires together.
type Deps struct {
	Repos     *repository.Repository
	Link      link.Link
	Cache     *cache.StatusCache
	Resolver  *climate.Resolver // nil means the default mode ranges
	Recorders []StatusRecorder  // extra sinks besides the status history table
	Auth      AuthConfig
	Log       *logger.Logger
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Cache == nil {
		d.Cache = cache.NewStatusCache()
	}
	recorders := append([]StatusRecorder{d.Repos.StatusHistory}, d.Recorders...)
	sub := NewSubscriber(d.Link, d.Cache, recorders, d.Log.Named("subscriber"))
	session := NewSession(d.Link, sub, d.Repos.EventRepo, d.Log.Named("session"))

	return &Service{
		Authorization: NewAuthService(d.Repos.Auth, d.Auth),
		Discovery:     NewDiscoveryService(d.Link),
		Sessions:      session,
		Control:       NewControlService(d.Link, d.Cache, session, d.Resolver, d.Repos.EventRepo, d.Log.Named("control")),
		Monitoring:    NewMonitoringService(d.Cache, session),
		EventLog:      NewEventLogService(d.Repos.EventRepo),
		History:       NewHistoryService(d.Repos.StatusHistory, session),
	}
}
