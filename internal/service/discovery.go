package service

import (
	"context"
	"fmt"

	"climate_control/internal/link"
)

type DiscoveryService struct {
	link link.Link
}

func NewDiscoveryService(l link.Link) *DiscoveryService {
	return &DiscoveryService{link: l}
}

func (s *DiscoveryService) ListAdapters(ctx context.Context) ([]string, error) {
	adapters, err := s.link.ListAdapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list adapters: %w", err)
	}
	return adapters, nil
}

func (s *DiscoveryService) ScanDevices(ctx context.Context, adapter string) ([]string, error) {
	devices, err := s.link.ScanDevices(ctx, adapter)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", adapter, err)
	}
	return devices, nil
}
