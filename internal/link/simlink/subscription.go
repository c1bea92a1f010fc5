package simlink

import (
	"context"
	"fmt"
	"sync"

	"climate_control/internal/link"
	"climate_control/internal/models"
)

type subscription struct {
	sim     *Simulator
	adapter string
	ch      chan models.DeviceStatusEvent
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) C() <-chan models.DeviceStatusEvent { return s.ch }

// Close stops delivery. It is safe to call more than once and from any goroutine.
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.sim.mu.Lock()
		s.sim.removeLocked(s)
		s.sim.mu.Unlock()
	})
	return nil
}

// Subscribe opens a status stream for every device behind adapter.
func (s *Simulator) Subscribe(ctx context.Context, adapter string) (link.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[adapter]; !ok {
		return nil, fmt.Errorf("subscribe %q: %w", adapter, link.ErrUnknownDevice)
	}
	sub := &subscription{
		sim:     s,
		adapter: adapter,
		ch:      make(chan models.DeviceStatusEvent, eventBuffer),
		done:    make(chan struct{}),
	}
	if s.subs[adapter] == nil {
		s.subs[adapter] = make(map[*subscription]struct{})
	}
	s.subs[adapter][sub] = struct{}{}
	return sub, nil
}

// removeLocked unregisters sub and closes its channel. Senders hold s.mu,
// so once sub is gone from the map nobody can send on it.
func (s *Simulator) removeLocked(sub *subscription) {
	if _, ok := s.subs[sub.adapter][sub]; !ok {
		return
	}
	delete(s.subs[sub.adapter], sub)
	close(sub.ch)
}

// publishLocked pushes d's status to every subscriber of adapter, in order.
func (s *Simulator) publishLocked(adapter string, d *device) {
	ev := models.DeviceStatusEvent{ID: d.id, Status: d.status}
	for sub := range s.subs[adapter] {
		select {
		case sub.ch <- ev:
		case <-sub.done:
		}
	}
}

// Drop ends every open subscription as if the link had gone away.
func (s *Simulator) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, subs := range s.subs {
		for sub := range subs {
			sub.once.Do(func() { close(sub.done) })
			s.removeLocked(sub)
		}
	}
}
