package mqttlink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"climate_control/internal/link"
	"climate_control/internal/models"
)

type subscription struct {
	link    *Link
	adapter string
	ch      chan models.DeviceStatusEvent
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) C() <-chan models.DeviceStatusEvent { return s.ch }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.link.mu.Lock()
		last := s.link.removeLocked(s)
		s.link.mu.Unlock()
		if last {
			err = s.link.broker.Unsubscribe(s.link.topics.Status(s.adapter))
		}
	})
	return err
}

// Subscribe opens the status topic for adapter. The broker subscription is
// shared by every stream on the same adapter.
func (l *Link) Subscribe(ctx context.Context, adapter string) (link.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, link.ErrClosed
	}
	if len(l.subs[adapter]) == 0 {
		handler := func(topic string, payload []byte) { l.handleStatus(adapter, topic, payload) }
		if err := l.broker.Subscribe(l.topics.Status(adapter), handler); err != nil {
			return nil, fmt.Errorf("%w: %w", link.ErrNotConnected, err)
		}
		l.subs[adapter] = make(map[*subscription]struct{})
	}
	sub := &subscription{
		link:    l,
		adapter: adapter,
		ch:      make(chan models.DeviceStatusEvent, eventBuffer),
		done:    make(chan struct{}),
	}
	l.subs[adapter][sub] = struct{}{}
	return sub, nil
}

// removeLocked unregisters sub and closes its channel. It reports whether sub
// was the last stream on its adapter.
func (l *Link) removeLocked(sub *subscription) bool {
	subs, ok := l.subs[sub.adapter]
	if !ok {
		return false
	}
	if _, ok := subs[sub]; !ok {
		return false
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(l.subs, sub.adapter)
		return true
	}
	return false
}

func (l *Link) handleStatus(adapter, topic string, payload []byte) {
	ev, err := decodeStatus(topic, payload)
	if err != nil {
		l.log.Warnw("mqtt_status_dropped", "topic", topic, "err", err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for sub := range l.subs[adapter] {
		select {
		case sub.ch <- ev:
		case <-sub.done:
		}
	}
}

// decodeStatus parses a status push. The device id falls back to the last
// topic segment when the payload omits it.
func decodeStatus(topic string, payload []byte) (models.DeviceStatusEvent, error) {
	var ev models.DeviceStatusEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("%w: %w", errMalformedStatus, err)
	}
	if ev.ID == "" {
		i := strings.LastIndexByte(topic, '/')
		ev.ID = topic[i+1:]
	}
	if ev.ID == "" {
		return ev, fmt.Errorf("%w: no device id", errMalformedStatus)
	}
	return ev, nil
}
