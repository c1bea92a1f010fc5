package service

import (
	"context"

	"climate_control/internal/models"
	"climate_control/internal/repository"
)

type HistoryService struct {
	repo    repository.StatusHistoryRepo
	session activeAdapter
}

func NewHistoryService(repo repository.StatusHistoryRepo, session activeAdapter) *HistoryService {
	return &HistoryService{repo: repo, session: session}
}

// Recent returns recorded snapshots for deviceID on the active adapter, newest first.
func (s *HistoryService) Recent(ctx context.Context, deviceID string, limit int) ([]models.StatusRecord, error) {
	adapter, ok := s.session.ActiveAdapter()
	if !ok {
		return nil, ErrNoActiveAdapter
	}
	return s.repo.List(ctx, adapter, deviceID, limit)
}
