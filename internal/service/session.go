package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"climate_control/internal/logger"
	"climate_control/internal/models"
	"climate_control/internal/repository"

	"github.com/google/uuid"
)

type adapterLister interface {
	ListAdapters(ctx context.Context) ([]string, error)
}

// Session owns the selected adapter and is the only thing that attaches or
// detaches the subscriber.
type Session struct {
	adapters adapterLister
	sub      *Subscriber
	events   repository.EventRepo
	log      *logger.Logger

	mu      sync.Mutex
	adapter string
	// ended is closed when the current selection is torn down.
	ended chan struct{}
}

func NewSession(adapters adapterLister, sub *Subscriber, events repository.EventRepo, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{adapters: adapters, sub: sub, events: events, log: log}
}

// Activate selects adapter and attaches to it. An unknown adapter falls back
// to the first one the link reports.
func (s *Session) Activate(ctx context.Context, adapter string) (SessionInfo, error) {
	available, err := s.adapters.ListAdapters(ctx)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("list adapters: %w", err)
	}
	if len(available) == 0 {
		return SessionInfo{}, ErrNoAdapters
	}
	chosen := adapter
	if !slices.Contains(available, adapter) {
		chosen = available[0]
		if adapter != "" {
			s.log.Warnw("session_adapter_fallback", "requested", adapter, "chosen", chosen)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sub.Attach(ctx, chosen); err != nil {
		return SessionInfo{}, err
	}
	if chosen != s.adapter {
		s.endLocked()
		s.ended = make(chan struct{})
	}
	s.adapter = chosen
	s.appendEvent(ctx, models.EventAttach, "attached to adapter "+chosen, chosen)
	return s.infoLocked(), nil
}

// Deactivate detaches and forgets the selected adapter.
func (s *Session) Deactivate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == "" {
		return nil
	}
	s.sub.Detach()
	s.endLocked()
	s.appendEvent(ctx, models.EventDetach, "detached from adapter "+s.adapter, s.adapter)
	s.adapter = ""
	return nil
}

// Reevaluate re-attaches to the selected adapter if its stream has ended.
// This is the only path back to Attached after the link drops a stream.
func (s *Session) Reevaluate(ctx context.Context) (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == "" {
		return s.infoLocked(), nil
	}
	if state, _ := s.sub.State(); state == Attached {
		return s.infoLocked(), nil
	}
	if err := s.sub.Attach(ctx, s.adapter); err != nil {
		return s.infoLocked(), err
	}
	s.appendEvent(ctx, models.EventAttach, "re-attached to adapter "+s.adapter, s.adapter)
	return s.infoLocked(), nil
}

func (s *Session) Current() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

// ActiveAdapter returns the selected adapter, if any.
func (s *Session) ActiveAdapter() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter, s.adapter != ""
}

// Lease returns the selected adapter with a channel that is closed once that
// selection is torn down by Deactivate or a switch to another adapter.
func (s *Session) Lease() (string, <-chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter, s.ended, s.adapter != ""
}

func (s *Session) endLocked() {
	if s.ended != nil {
		close(s.ended)
		s.ended = nil
	}
}

func (s *Session) infoLocked() SessionInfo {
	state, _ := s.sub.State()
	return SessionInfo{Adapter: s.adapter, State: state.String()}
}

func (s *Session) appendEvent(ctx context.Context, typ, desc, adapter string) {
	if s.events == nil {
		return
	}
	err := s.events.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    map[string]any{"adapter": adapter},
	})
	if err != nil {
		s.log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}
