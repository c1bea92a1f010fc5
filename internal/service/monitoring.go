package service

import (
	"fmt"
	"sort"

	"climate_control/internal/cache"
)

type MonitoringService struct {
	cache   *cache.StatusCache
	session activeAdapter
}

func NewMonitoringService(c *cache.StatusCache, session activeAdapter) *MonitoringService {
	return &MonitoringService{cache: c, session: session}
}

// GetStatus returns the last status received for deviceID on the active adapter.
func (s *MonitoringService) GetStatus(deviceID string) (StatusView, error) {
	adapter, ok := s.session.ActiveAdapter()
	if !ok {
		return StatusView{}, ErrNoActiveAdapter
	}
	st, ok := s.cache.Get(cache.Key{Adapter: adapter, DeviceID: deviceID})
	if !ok {
		return StatusView{}, fmt.Errorf("%s: %w", deviceID, ErrNoStatus)
	}
	return newStatusView(adapter, deviceID, st), nil
}

// ListStatuses returns every cached status ordered by adapter and device.
func (s *MonitoringService) ListStatuses() []StatusView {
	snap := s.cache.Snapshot()
	out := make([]StatusView, 0, len(snap))
	for k, st := range snap {
		out = append(out, newStatusView(k.Adapter, k.DeviceID, st))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Adapter != out[j].Adapter {
			return out[i].Adapter < out[j].Adapter
		}
		return out[i].DeviceID < out[j].DeviceID
	})
	return out
}
