// Package mqttlink talks to a BLE bridge process over MQTT.
package mqttlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"climate_control/internal/link"
	"climate_control/internal/logger"
	"climate_control/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultAckTimeout     = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
	eventBuffer           = 32
)

// Options tunes the link. Zero values fall back to defaults.
type Options struct {
	Prefix         string
	AckTimeout     time.Duration
	RequestTimeout time.Duration
}

type requestMsg struct {
	RequestID string `json:"request_id"`
	Adapter   string `json:"adapter,omitempty"`
}

type responseMsg struct {
	RequestID string   `json:"request_id"`
	Items     []string `json:"items"`
	Error     string   `json:"error,omitempty"`
}

type commandMsg struct {
	RequestID string                 `json:"request_id"`
	Command   models.CommandEnvelope `json:"command"`
}

type ackMsg struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error,omitempty"`
}

// Link implements link.Link against the bridge topics.
type Link struct {
	broker Broker
	topics Topics
	opts   Options
	log    *logger.Logger

	pendingMu sync.Mutex
	pending   map[string]chan []byte

	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

var _ link.Link = (*Link)(nil)

// New returns a link speaking over broker. Start must be called before use.
func New(broker Broker, opts Options, log *logger.Logger) *Link {
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = DefaultAckTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Link{
		broker:  broker,
		topics:  Topics{Prefix: opts.Prefix},
		opts:    opts,
		log:     log,
		pending: make(map[string]chan []byte),
		subs:    make(map[string]map[*subscription]struct{}),
	}
}

// Start subscribes to the response and ack topics.
func (l *Link) Start() error {
	if err := l.broker.Subscribe(l.topics.AllResponses(), l.handleReply); err != nil {
		return fmt.Errorf("subscribe responses: %w", err)
	}
	if err := l.broker.Subscribe(l.topics.AllAcks(), l.handleReply); err != nil {
		return fmt.Errorf("subscribe acks: %w", err)
	}
	return nil
}

func (l *Link) ListAdapters(ctx context.Context) ([]string, error) {
	return l.request(ctx, requestAdapters, "")
}

func (l *Link) ScanDevices(ctx context.Context, adapter string) ([]string, error) {
	return l.request(ctx, requestScan, adapter)
}

func (l *Link) Connect(ctx context.Context, adapter, deviceID string) error {
	return l.publish(l.topics.Connect(adapter, deviceID), requestMsg{RequestID: uuid.NewString(), Adapter: adapter})
}

func (l *Link) Disconnect(ctx context.Context, adapter, deviceID string) error {
	return l.publish(l.topics.Disconnect(adapter, deviceID), requestMsg{RequestID: uuid.NewString(), Adapter: adapter})
}

// Dispatch publishes cmd and waits for the bridge to acknowledge it.
func (l *Link) Dispatch(ctx context.Context, adapter, deviceID string, cmd models.Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %w", link.ErrRejected, err)
	}
	id := uuid.NewString()
	reply := l.await(id)
	defer l.forget(id)

	msg := commandMsg{RequestID: id, Command: models.CommandEnvelope{Command: cmd}}
	if err := l.publish(l.topics.Command(adapter, deviceID), msg); err != nil {
		return err
	}

	payload, err := l.wait(ctx, reply, l.opts.AckTimeout)
	if err != nil {
		return fmt.Errorf("%s to %s: %w", cmd.Kind(), deviceID, err)
	}
	var ack ackMsg
	if err := json.Unmarshal(payload, &ack); err != nil {
		return fmt.Errorf("decode ack: %w", err)
	}
	if ack.Error != "" {
		return fmt.Errorf("%s to %s: %w: %s", cmd.Kind(), deviceID, link.ErrRejected, ack.Error)
	}
	return nil
}

func (l *Link) request(ctx context.Context, kind, adapter string) ([]string, error) {
	id := uuid.NewString()
	reply := l.await(id)
	defer l.forget(id)

	if err := l.publish(l.topics.Request(kind), requestMsg{RequestID: id, Adapter: adapter}); err != nil {
		return nil, err
	}
	payload, err := l.wait(ctx, reply, l.opts.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", kind, err)
	}
	var resp responseMsg
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", kind, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s request: %w: %s", kind, link.ErrRejected, resp.Error)
	}
	return resp.Items, nil
}

func (l *Link) publish(topic string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := l.broker.Publish(topic, b); err != nil {
		return fmt.Errorf("%w: %w", link.ErrNotConnected, err)
	}
	return nil
}

func (l *Link) await(id string) chan []byte {
	ch := make(chan []byte, 1)
	l.pendingMu.Lock()
	l.pending[id] = ch
	l.pendingMu.Unlock()
	return ch
}

func (l *Link) forget(id string) {
	l.pendingMu.Lock()
	delete(l.pending, id)
	l.pendingMu.Unlock()
}

func (l *Link) wait(ctx context.Context, reply <-chan []byte, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case payload := <-reply:
		return payload, nil
	case <-timer.C:
		return nil, link.ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleReply routes responses and acks to whoever is waiting on their request id.
func (l *Link) handleReply(topic string, payload []byte) {
	var head struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.RequestID == "" {
		l.log.Warnw("mqtt_reply_malformed", "topic", topic, "err", err)
		return
	}
	l.pendingMu.Lock()
	ch, ok := l.pending[head.RequestID]
	l.pendingMu.Unlock()
	if !ok {
		l.log.Debugw("mqtt_reply_unmatched", "topic", topic, "request_id", head.RequestID)
		return
	}
	select {
	case ch <- payload:
	default:
	}
}

// Reconnected restores the reply subscriptions after the broker connection
// comes back. Status streams stay ended until they are subscribed again.
func (l *Link) Reconnected() {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	if err := l.Start(); err != nil {
		l.log.Errorw("mqtt_resubscribe_failed", "err", err)
		return
	}
	l.log.Infow("mqtt_reconnected")
}

// ConnectionLost ends every open status stream. Wire it to the broker's
// connection-lost callback.
func (l *Link) ConnectionLost(err error) {
	l.log.Warnw("mqtt_connection_lost", "err", err)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, subs := range l.subs {
		for sub := range subs {
			sub.once.Do(func() { close(sub.done) })
			l.removeLocked(sub)
		}
	}
}

// Close ends all streams and refuses further subscriptions.
func (l *Link) Close() {
	l.ConnectionLost(link.ErrClosed)
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

var errMalformedStatus = errors.New("malformed status")
