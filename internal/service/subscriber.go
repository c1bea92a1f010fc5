package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"climate_control/internal/cache"
	"climate_control/internal/link"
	"climate_control/internal/logger"
	"climate_control/internal/models"
)

const recordTimeout = 2 * time.Second

// StatusRecorder receives every status the subscriber caches.
type StatusRecorder interface {
	Record(ctx context.Context, rec models.StatusRecord) error
}

// statusSource is the part of link.Link the subscriber needs.
type statusSource interface {
	Subscribe(ctx context.Context, adapter string) (link.Subscription, error)
}

// SubscriberState is Detached or Attached.
type SubscriberState int

const (
	Detached SubscriberState = iota
	Attached
)

func (s SubscriberState) String() string {
	if s == Attached {
		return "attached"
	}
	return "detached"
}

// Subscriber holds at most one status stream and writes every event it
// carries into the cache under the attached adapter.
//
// Each Attach starts a new generation. A pump only writes while its
// generation is current, so once Detach returns no stale event can land in
// the cache.
type Subscriber struct {
	source    statusSource
	cache     *cache.StatusCache
	recorders []StatusRecorder
	log       *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   SubscriberState
	adapter string
	sub     link.Subscription
	gen     uint64
}

func NewSubscriber(source statusSource, c *cache.StatusCache, recorders []StatusRecorder, log *logger.Logger) *Subscriber {
	if log == nil {
		log = logger.Nop()
	}
	return &Subscriber{
		source:    source,
		cache:     c,
		recorders: recorders,
		log:       log,
		now:       time.Now,
	}
}

// Attach subscribes to adapter's status stream. Attaching to the adapter
// already attached is a no-op; any other stream is torn down first.
func (s *Subscriber) Attach(ctx context.Context, adapter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Attached && s.adapter == adapter {
		return nil
	}
	s.teardownLocked()

	sub, err := s.source.Subscribe(ctx, adapter)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", adapter, err)
	}
	s.gen++
	s.state = Attached
	s.adapter = adapter
	s.sub = sub
	go s.pump(s.gen, adapter, sub)

	s.log.Infow("subscriber_attached", "adapter", adapter)
	return nil
}

// Detach closes the stream and empties the cache.
func (s *Subscriber) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.log.Infow("subscriber_detached", "adapter", s.adapter)
}

// State reports the current state and the adapter of the last attach.
func (s *Subscriber) State() (SubscriberState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.adapter
}

func (s *Subscriber) teardownLocked() {
	if s.sub != nil {
		if err := s.sub.Close(); err != nil {
			s.log.Warnw("subscriber_close_failed", "adapter", s.adapter, "err", err)
		}
		s.sub = nil
	}
	s.gen++
	s.state = Detached
	s.cache.Clear()
}

func (s *Subscriber) pump(gen uint64, adapter string, sub link.Subscription) {
	for ev := range sub.C() {
		if !s.deliver(gen, adapter, ev) {
			continue
		}
		s.record(adapter, ev)
	}
	s.streamEnded(gen, adapter)
}

// deliver caches ev if gen is still the live generation.
func (s *Subscriber) deliver(gen uint64, adapter string, ev models.DeviceStatusEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != Attached {
		return false
	}
	s.cache.Put(cache.Key{Adapter: adapter, DeviceID: ev.ID}, ev.Status)
	return true
}

func (s *Subscriber) record(adapter string, ev models.DeviceStatusEvent) {
	if len(s.recorders) == 0 {
		return
	}
	rec := models.StatusRecord{
		Adapter:    adapter,
		DeviceID:   ev.ID,
		ReceivedAt: s.now().UTC(),
		Status:     ev.Status,
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	for _, r := range s.recorders {
		if err := r.Record(ctx, rec); err != nil {
			s.log.Warnw("status_record_failed", "adapter", adapter, "device_id", ev.ID, "err", err)
		}
	}
}

// streamEnded handles the link closing a stream we did not close ourselves.
// The subscriber goes Detached and stays there until someone attaches again;
// cached entries are kept until then.
func (s *Subscriber) streamEnded(gen uint64, adapter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.gen++
	s.state = Detached
	s.sub = nil
	s.log.Warnw("subscriber_stream_closed", "adapter", adapter)
}
