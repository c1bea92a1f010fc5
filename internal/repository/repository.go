package repository

import (
	"context"
	"database/sql"
	"time"

	"climate_control/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// EventQuery narrows an event listing. Zero fields do not filter.
type EventQuery struct {
	From     time.Time
	To       time.Time
	Type     string
	DeviceID string
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, q EventQuery) ([]models.DeviceEvent, error)
}

type StatusHistoryRepo interface {
	Record(ctx context.Context, rec models.StatusRecord) error
	List(ctx context.Context, adapter, deviceID string, limit int) ([]models.StatusRecord, error)
}

type Repository struct {
	EventRepo     EventRepo
	StatusHistory StatusHistoryRepo
	Auth          Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo:     NewEventSQLite(db),
		StatusHistory: NewStatusHistorySQLite(db),
		Auth:          NewUserRepository(db),
	}
}
