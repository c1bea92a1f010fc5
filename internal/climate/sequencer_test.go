package climate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"climate_control/internal/models"
)

func TestBuildTransition_ModeSwitchFromStandby(t *testing.T) {
	current := models.DeviceStatus{
		OperatingMode:     models.ModeStandby,
		RemainingDuration: models.Duration{Secs: 5430},
		FanStep:           40,
	}

	got, err := BuildTransition(current, 72)
	if err != nil {
		t.Fatalf("BuildTransition: %v", err)
	}

	want := []models.Command{
		models.Button{Code: models.ButtonCool},
		models.SetTime{Hours: 1, Minutes: 30},
		models.SetFan{Unit: models.FanPercent, Value: 40},
		models.SetTemp{Unit: models.Fahrenheit, Value: 72},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v\nwant %#v", got, want)
	}
}

func TestBuildTransition_SameModeOnlySetsTemp(t *testing.T) {
	current := models.DeviceStatus{
		OperatingMode:     models.ModeCool,
		RemainingDuration: models.Duration{Secs: 600},
		FanStep:           55,
	}

	got, err := BuildTransition(current, 75)
	if err != nil {
		t.Fatalf("BuildTransition: %v", err)
	}
	want := []models.Command{models.SetTemp{Unit: models.Fahrenheit, Value: 75}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestBuildTransition_BoundaryInCurrentModeNoSwitch(t *testing.T) {
	cases := []struct {
		mode models.OperatingMode
		f    int
	}{
		{models.ModeCool, 66},
		{models.ModeCool, 79},
		{models.ModeDry, 80},
		{models.ModeDry, 89},
		{models.ModeExtendedHeat, 90},
		{models.ModeExtendedHeat, 92},
	}
	for _, tc := range cases {
		got, err := BuildTransition(models.DeviceStatus{OperatingMode: tc.mode}, tc.f)
		if err != nil {
			t.Fatalf("BuildTransition(%s, %d): %v", tc.mode, tc.f, err)
		}
		if len(got) != 1 {
			t.Fatalf("BuildTransition(%s, %d) returned %d commands, want 1", tc.mode, tc.f, len(got))
		}
	}
}

func TestBuildTransition_ModeChangeOrderAndPreservedState(t *testing.T) {
	cases := []struct {
		name    string
		current models.DeviceStatus
		target  int
		button  models.ButtonCode
		hours   uint8
		minutes uint8
	}{
		{
			name: "cool to dry",
			current: models.DeviceStatus{
				OperatingMode:     models.ModeCool,
				RemainingDuration: models.Duration{Secs: 3599, Nanos: 999},
				FanStep:           100,
			},
			target:  85,
			button:  models.ButtonDry,
			hours:   0,
			minutes: 59,
		},
		{
			name: "heat to extended heat",
			current: models.DeviceStatus{
				OperatingMode:     models.ModeNormalHeat,
				RemainingDuration: models.Duration{Secs: 4*3600 + 15*60 + 59},
				FanStep:           5,
			},
			target:  91,
			button:  models.ButtonExternalHeat,
			hours:   4,
			minutes: 15,
		},
		{
			name: "wait to cool with empty timer",
			current: models.DeviceStatus{
				OperatingMode: models.ModeWait,
				FanStep:       20,
			},
			target: 66,
			button: models.ButtonCool,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildTransition(tc.current, tc.target)
			if err != nil {
				t.Fatalf("BuildTransition: %v", err)
			}
			if len(got) != 4 {
				t.Fatalf("got %d commands, want 4: %#v", len(got), got)
			}
			kinds := []string{got[0].Kind(), got[1].Kind(), got[2].Kind(), got[3].Kind()}
			if !reflect.DeepEqual(kinds, []string{"Button", "SetTime", "SetFan", "SetTemp"}) {
				t.Fatalf("wrong order: %v", kinds)
			}
			if b := got[0].(models.Button); b.Code != tc.button {
				t.Fatalf("button=%s, want %s", b.Code, tc.button)
			}
			if st := got[1].(models.SetTime); st.Hours != tc.hours || st.Minutes != tc.minutes {
				t.Fatalf("SetTime=%+v, want %d:%d", st, tc.hours, tc.minutes)
			}
			if sf := got[2].(models.SetFan); sf.Unit != models.FanPercent || sf.Value != tc.current.FanStep {
				t.Fatalf("SetFan=%+v, want Percent %d", sf, tc.current.FanStep)
			}
			if tt := got[3].(models.SetTemp); tt.Unit != models.Fahrenheit || int(tt.Value) != tc.target {
				t.Fatalf("SetTemp=%+v, want Fahrenheit %d", tt, tc.target)
			}
		})
	}
}

func TestBuildTransition_OutOfRangePropagates(t *testing.T) {
	cmds, err := BuildTransition(models.DeviceStatus{OperatingMode: models.ModeCool}, 100)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if cmds != nil {
		t.Fatalf("expected no commands, got %v", cmds)
	}
}

func TestBuildTransition_UnsupportedMode(t *testing.T) {
	r := MustNewResolver([]ModeRange{
		{Mode: models.ModeTurboHeat, Range: TempRange{Min: 93, Max: 104}},
	})
	_, err := r.BuildTransition(models.DeviceStatus{OperatingMode: models.ModeStandby}, 95)
	var unsupported *UnsupportedModeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedModeError, got %v", err)
	}
	if unsupported.Mode != models.ModeTurboHeat {
		t.Fatalf("mode=%s, want TurboHeat", unsupported.Mode)
	}
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("expected errors.Is(err, ErrUnsupportedMode)")
	}
}

func TestButtonFor_EveryMode(t *testing.T) {
	buttons := map[models.OperatingMode]models.ButtonCode{
		models.ModeCool:         models.ButtonCool,
		models.ModeDry:          models.ButtonDry,
		models.ModeExtendedHeat: models.ButtonExternalHeat,
	}
	// a new mode must be added here and given a deliberate mapping in buttonFor
	if name := (models.ModeWait + 1).String(); !strings.HasPrefix(name, "OperatingMode(") {
		t.Fatalf("mode %s is not covered by buttonFor", name)
	}
	for mode := models.ModeStandby; mode <= models.ModeWait; mode++ {
		got, err := buttonFor(mode)
		want, ok := buttons[mode]
		if ok {
			if err != nil || got != want {
				t.Fatalf("buttonFor(%s) = %v, %v; want %v", mode, got, err, want)
			}
			continue
		}
		if !errors.Is(err, ErrUnsupportedMode) {
			t.Fatalf("buttonFor(%s) expected ErrUnsupportedMode, got %v", mode, err)
		}
	}
}
