// Package simlink is an in-process device link backed by simulated appliances.
package simlink

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"climate_control/internal/link"
	"climate_control/internal/models"
)

// ----------- Simulation constants -----------
const (
	AmbientC           = 21.0 // room temperature °C
	MinTargetC         = 19.0
	MaxTargetC         = 43.0
	RampCPerSec        = 0.5 // °C per second toward target while running
	StandbyDriftPerSec = 0.1 // °C per second toward ambient in Standby
	eventBuffer        = 16
)

// modeDefaults is what a button press resets the device to.
type modeDefaults struct {
	timer   time.Duration
	max     time.Duration
	fan     uint8
	targetC float64
}

var defaultsByMode = map[models.OperatingMode]modeDefaults{
	models.ModeStandby:      {},
	models.ModeNormalHeat:   {timer: time.Hour, max: 4 * time.Hour, fan: 50, targetC: 32},
	models.ModeTurboHeat:    {timer: 10 * time.Minute, max: 10 * time.Minute, fan: 100, targetC: 43},
	models.ModeExtendedHeat: {timer: 2 * time.Hour, max: 12 * time.Hour, fan: 50, targetC: 33},
	models.ModeCool:         {timer: time.Hour, max: 12 * time.Hour, fan: 50, targetC: 23},
	models.ModeDry:          {timer: time.Hour, max: 12 * time.Hour, fan: 100, targetC: 28},
	models.ModeWait:         {},
}

var modeByButton = map[models.ButtonCode]models.OperatingMode{
	models.ButtonStop:         models.ModeStandby,
	models.ButtonHeat:         models.ModeNormalHeat,
	models.ButtonTurbo:        models.ModeTurboHeat,
	models.ButtonExternalHeat: models.ModeExtendedHeat,
	models.ButtonCool:         models.ModeCool,
	models.ButtonDry:          models.ModeDry,
}

type device struct {
	id        string
	name      string
	connected bool
	status    models.DeviceStatus
	updatedAt time.Time
}

// Simulator implements link.Link over simulated devices.
// Every adapter sees its own copy of the configured devices.
type Simulator struct {
	mu      sync.Mutex
	devices map[string]map[string]*device // adapter -> id -> device
	subs    map[string]map[*subscription]struct{}
	now     func() time.Time
}

var _ link.Link = (*Simulator)(nil)

// NewSimulator returns a simulator exposing deviceIDs behind each adapter.
func NewSimulator(adapters, deviceIDs []string) *Simulator {
	s := &Simulator{
		devices: make(map[string]map[string]*device, len(adapters)),
		subs:    make(map[string]map[*subscription]struct{}),
		now:     time.Now,
	}
	for _, a := range adapters {
		byID := make(map[string]*device, len(deviceIDs))
		for _, id := range deviceIDs {
			byID[id] = &device{id: id, status: standbyStatus()}
		}
		s.devices[a] = byID
	}
	return s
}

func standbyStatus() models.DeviceStatus {
	return models.DeviceStatus{
		ActualTemp:    AmbientC,
		TargetTemp:    AmbientC,
		OperatingMode: models.ModeStandby,
		FanStep:       5,
		MinTargetTemp: MinTargetC,
		MaxTargetTemp: MaxTargetC,
		AmbientTemp:   AmbientC,
	}
}

func (s *Simulator) ListAdapters(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.devices))
	for a := range s.devices {
		out = append(out, a)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Simulator) ScanDevices(ctx context.Context, adapter string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.devices[adapter]
	if !ok {
		return nil, fmt.Errorf("scan %q: %w", adapter, link.ErrUnknownDevice)
	}
	out := make([]string, 0, len(byID))
	for id := range byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Connect marks the device connected and pushes its current status.
func (s *Simulator) Connect(ctx context.Context, adapter, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(adapter, deviceID)
	if err != nil {
		return err
	}
	d.connected = true
	d.updatedAt = s.now()
	s.publishLocked(adapter, d)
	return nil
}

func (s *Simulator) Disconnect(ctx context.Context, adapter, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(adapter, deviceID)
	if err != nil {
		return err
	}
	d.connected = false
	return nil
}

// Dispatch applies cmd the way the appliance firmware does and pushes the new status.
func (s *Simulator) Dispatch(ctx context.Context, adapter, deviceID string, cmd models.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %w", link.ErrRejected, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(adapter, deviceID)
	if err != nil {
		return err
	}
	if !d.connected {
		return fmt.Errorf("dispatch to %s: %w", deviceID, link.ErrNotConnected)
	}
	if err := apply(d, cmd); err != nil {
		return err
	}
	d.updatedAt = s.now()
	s.publishLocked(adapter, d)
	return nil
}

func (s *Simulator) lookup(adapter, deviceID string) (*device, error) {
	d, ok := s.devices[adapter][deviceID]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", adapter, deviceID, link.ErrUnknownDevice)
	}
	return d, nil
}

// apply mutates d according to cmd.
func apply(d *device, cmd models.Command) error {
	st := &d.status
	switch c := cmd.(type) {
	case models.Button:
		if mode, ok := modeByButton[c.Code]; ok {
			switchMode(st, mode)
			return nil
		}
		switch c.Code {
		case models.ButtonFanUp:
			st.FanStep = clampFan(int(st.FanStep) + 5)
		case models.ButtonFanDown:
			st.FanStep = clampFan(int(st.FanStep) - 5)
		case models.ButtonTempUp1C:
			st.TargetTemp = clampTarget(st.TargetTemp + 1)
		case models.ButtonTempDown1C:
			st.TargetTemp = clampTarget(st.TargetTemp - 1)
		case models.ButtonTempUp1F:
			st.TargetTemp = clampTarget(st.TargetTemp + 5.0/9.0)
		case models.ButtonTempDown1F:
			st.TargetTemp = clampTarget(st.TargetTemp - 5.0/9.0)
		}
	case models.SetTime:
		if st.OperatingMode == models.ModeStandby {
			return fmt.Errorf("%w: cannot set timer in Standby", link.ErrRejected)
		}
		want := time.Duration(c.Hours)*time.Hour + time.Duration(c.Minutes)*time.Minute
		if limit := st.MaxDuration.Std(); want > limit {
			want = limit
		}
		st.RemainingDuration = models.DurationOf(want)
	case models.SetTemp:
		v := float64(c.Value)
		if c.Unit == models.Fahrenheit {
			v = models.FToC(v)
		}
		st.TargetTemp = clampTarget(math.Round(v*2) / 2)
	case models.SetFan:
		if c.Unit == models.FanStep {
			st.FanStep = clampFan((int(c.Value) + 1) * 5)
		} else {
			st.FanStep = clampFan(int(c.Value))
		}
	case models.SetClock:
		// the simulated clock follows the host
	case models.SetDeviceName:
		d.name = c.Name
	default:
		return fmt.Errorf("%w: unsupported command %T", link.ErrRejected, cmd)
	}
	return nil
}

// switchMode resets timer, fan and target to the new mode's defaults.
func switchMode(st *models.DeviceStatus, mode models.OperatingMode) {
	def := defaultsByMode[mode]
	st.OperatingMode = mode
	st.RemainingDuration = models.DurationOf(def.timer)
	st.MaxDuration = models.DurationOf(def.max)
	if mode == models.ModeStandby {
		st.TargetTemp = st.AmbientTemp
		return
	}
	st.FanStep = def.fan
	st.TargetTemp = def.targetC
}

func clampFan(p int) uint8 {
	switch {
	case p < 5:
		return 5
	case p > models.MaxFanPercent:
		return models.MaxFanPercent
	}
	return uint8(p)
}

func clampTarget(c float64) float64 {
	return math.Max(MinTargetC, math.Min(MaxTargetC, c))
}

// Run ticks at the given interval until ctx is canceled.
func (s *Simulator) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = time.Second
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(now)
		}
	}
}

// step advances every connected device to now and pushes its status.
func (s *Simulator) step(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for adapter, byID := range s.devices {
		for _, d := range byID {
			if !d.connected {
				continue
			}
			elapsed := now.Sub(d.updatedAt).Seconds()
			if elapsed <= 0 {
				continue
			}
			if d.status.OperatingMode == models.ModeStandby {
				driftToAmbient(&d.status, elapsed)
			} else {
				approachTarget(&d.status, elapsed)
				countDown(&d.status, elapsed)
			}
			d.updatedAt = now
			s.publishLocked(adapter, d)
		}
	}
}

// driftToAmbient moves the outlet temperature toward ambient.
func driftToAmbient(st *models.DeviceStatus, elapsed float64) {
	st.ActualTemp = moveToward(st.ActualTemp, st.AmbientTemp, StandbyDriftPerSec*elapsed)
}

// approachTarget moves the outlet temperature toward the target.
func approachTarget(st *models.DeviceStatus, elapsed float64) {
	st.ActualTemp = moveToward(st.ActualTemp, st.TargetTemp, RampCPerSec*elapsed)
}

// countDown decrements the run timer; an expired timer returns the device to Standby.
func countDown(st *models.DeviceStatus, elapsed float64) {
	left := st.RemainingDuration.Std() - time.Duration(elapsed*float64(time.Second))
	if left <= 0 {
		switchMode(st, models.ModeStandby)
		return
	}
	st.RemainingDuration = models.DurationOf(left)
}

func moveToward(from, to, by float64) float64 {
	if from < to {
		return math.Min(from+by, to)
	}
	return math.Max(from-by, to)
}

// Status returns the simulated device's current status.
func (s *Simulator) Status(adapter, deviceID string) (models.DeviceStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(adapter, deviceID)
	if err != nil {
		return models.DeviceStatus{}, false
	}
	return d.status, true
}
