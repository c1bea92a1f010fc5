package service

import (
	"context"
	"fmt"
	"time"

	"climate_control/internal/cache"
	"climate_control/internal/climate"
	"climate_control/internal/link"
	"climate_control/internal/logger"
	"climate_control/internal/models"
	"climate_control/internal/repository"

	"github.com/google/uuid"
)

type activeAdapter interface {
	ActiveAdapter() (string, bool)
}

// leasedSession hands out the selected adapter together with a channel that
// closes when that selection ends.
type leasedSession interface {
	activeAdapter
	Lease() (adapter string, ended <-chan struct{}, ok bool)
}

type statusReader interface {
	Get(key cache.Key) (models.DeviceStatus, bool)
}

type ControlService struct {
	link     link.Link
	statuses statusReader
	session  leasedSession
	resolver *climate.Resolver
	events   repository.EventRepo
	log      *logger.Logger
}

func NewControlService(l link.Link, statuses statusReader, session leasedSession, resolver *climate.Resolver, events repository.EventRepo, log *logger.Logger) *ControlService {
	if resolver == nil {
		resolver = climate.MustNewResolver(climate.DefaultRanges)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ControlService{
		link:     l,
		statuses: statuses,
		session:  session,
		resolver: resolver,
		events:   events,
		log:      log,
	}
}

// SetTemperature moves a device to targetF, switching mode first when the
// target lies in another mode's range. Commands go out one at a time, each
// waiting for the previous to complete. Commands not yet sent are abandoned
// when ctx is done or the session is torn down. The cache is never touched
// here; the device's own status push updates it.
func (s *ControlService) SetTemperature(ctx context.Context, deviceID string, targetF int) error {
	adapter, ended, ok := s.session.Lease()
	if !ok {
		return ErrNoActiveAdapter
	}
	current, ok := s.statuses.Get(cache.Key{Adapter: adapter, DeviceID: deviceID})
	if !ok {
		return fmt.Errorf("%s: %w", deviceID, ErrNoStatus)
	}

	cmds, err := s.resolver.BuildTransition(current, targetF)
	if err != nil {
		return err
	}

	for i, cmd := range cmds {
		if err := s.stillLeased(ctx, adapter, ended); err != nil {
			s.failed(ctx, deviceID, fmt.Sprintf("set temperature %d°F abandoned after %d of %d commands", targetF, i, len(cmds)), err)
			return fmt.Errorf("set temperature %d°F: abandoned after %d of %d commands: %w", targetF, i, len(cmds), err)
		}
		if err := s.link.Dispatch(ctx, adapter, deviceID, cmd); err != nil {
			s.failed(ctx, deviceID, fmt.Sprintf("%s failed (%d of %d)", cmd.Kind(), i+1, len(cmds)), err)
			return fmt.Errorf("set temperature %d°F: %s (%d of %d): %w", targetF, cmd.Kind(), i+1, len(cmds), err)
		}
	}

	if len(cmds) > 1 {
		to, _ := s.resolver.Resolve(targetF)
		h, m := current.RemainingDuration.HoursMinutes()
		s.appendEvent(ctx, models.EventModeChange, deviceID, fmt.Sprintf("mode %s -> %s for %d°F", current.OperatingMode, to, targetF), map[string]any{
			"from":          current.OperatingMode.String(),
			"to":            to.String(),
			"target_f":      targetF,
			"restored_time": fmt.Sprintf("%d:%02d", h, m),
			"restored_fan":  current.FanStep,
		})
		return nil
	}
	s.appendEvent(ctx, models.EventCommand, deviceID, fmt.Sprintf("target set to %d°F", targetF), map[string]any{"target_f": targetF})
	return nil
}

func (s *ControlService) stillLeased(ctx context.Context, adapter string, ended <-chan struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ended:
		return ErrSessionEnded
	default:
	}
	if current, ok := s.session.ActiveAdapter(); !ok || current != adapter {
		return ErrSessionEnded
	}
	return nil
}

// SendCommand dispatches one raw command.
func (s *ControlService) SendCommand(ctx context.Context, deviceID string, cmd models.Command) error {
	adapter, ok := s.session.ActiveAdapter()
	if !ok {
		return ErrNoActiveAdapter
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := s.link.Dispatch(ctx, adapter, deviceID, cmd); err != nil {
		s.failed(ctx, deviceID, cmd.Kind()+" failed", err)
		return fmt.Errorf("%s: %w", cmd.Kind(), err)
	}
	meta := map[string]any{"kind": cmd.Kind()}
	if b, err := models.MarshalCommand(cmd); err == nil {
		meta["command"] = string(b)
	}
	s.appendEvent(ctx, models.EventCommand, deviceID, cmd.Kind()+" sent", meta)
	return nil
}

// Connect asks the link to connect a device. Completion shows up as a status push.
func (s *ControlService) Connect(ctx context.Context, deviceID string) error {
	adapter, ok := s.session.ActiveAdapter()
	if !ok {
		return ErrNoActiveAdapter
	}
	if err := s.link.Connect(ctx, adapter, deviceID); err != nil {
		s.failed(ctx, deviceID, "connect failed", err)
		return fmt.Errorf("connect %s: %w", deviceID, err)
	}
	s.appendEvent(ctx, models.EventConnect, deviceID, "connect requested", map[string]any{"adapter": adapter})
	return nil
}

func (s *ControlService) Disconnect(ctx context.Context, deviceID string) error {
	adapter, ok := s.session.ActiveAdapter()
	if !ok {
		return ErrNoActiveAdapter
	}
	if err := s.link.Disconnect(ctx, adapter, deviceID); err != nil {
		s.failed(ctx, deviceID, "disconnect failed", err)
		return fmt.Errorf("disconnect %s: %w", deviceID, err)
	}
	s.appendEvent(ctx, models.EventDisconnect, deviceID, "disconnect requested", map[string]any{"adapter": adapter})
	return nil
}

func (s *ControlService) failed(ctx context.Context, deviceID, desc string, cause error) {
	s.log.Errorw("control_failed", "device_id", deviceID, "detail", desc, "err", cause)
	s.appendEvent(context.WithoutCancel(ctx), models.EventError, deviceID, desc, map[string]any{"error": cause.Error()})
}

func (s *ControlService) appendEvent(ctx context.Context, typ, deviceID, desc string, meta map[string]any) {
	if s.events == nil {
		return
	}
	err := s.events.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		DeviceID:    deviceID,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Warnw("event_append_failed", "type", typ, "device_id", deviceID, "err", err)
	}
}
