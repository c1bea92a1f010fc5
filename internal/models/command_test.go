package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMarshalCommand_TaggedForm(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
		want string
	}{
		{"button", Button{Code: ButtonCool}, `{"type":"Button","content":"Cool"}`},
		{"set time", SetTime{Hours: 1, Minutes: 30}, `{"type":"SetTime","content":{"hours":1,"minutes":30}}`},
		{"set temp", SetTemp{Unit: Fahrenheit, Value: 72}, `{"type":"SetTemp","content":{"type":"Fahrenheit","value":72}}`},
		{"set fan", SetFan{Unit: FanPercent, Value: 40}, `{"type":"SetFan","content":{"type":"Percent","value":40}}`},
		{"device name", SetDeviceName{Name: "upstairs"}, `{"type":"SetParam","content":{"DeviceName":"upstairs"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := MarshalCommand(tc.cmd)
			if err != nil {
				t.Fatalf("MarshalCommand: %v", err)
			}
			if string(b) != tc.want {
				t.Fatalf("got %s, want %s", b, tc.want)
			}
			back, err := UnmarshalCommand(b)
			if err != nil {
				t.Fatalf("UnmarshalCommand: %v", err)
			}
			if back != tc.cmd {
				t.Fatalf("decoded %#v, want %#v", back, tc.cmd)
			}
		})
	}
}

func TestUnmarshalCommand_Rejects(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{"type":"Launch","content":1}`,
		`{"type":"Button"}`,
		`{"type":"Button","content":"Eject"}`,
		`{"type":"SetTime","content":"soon"}`,
	} {
		if _, err := UnmarshalCommand([]byte(in)); !errors.Is(err, ErrInvalidCommand) {
			t.Fatalf("UnmarshalCommand(%s) expected ErrInvalidCommand, got %v", in, err)
		}
	}
}

func TestCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"fan step max", SetFan{Unit: FanStep, Value: 19}, false},
		{"fan step over", SetFan{Unit: FanStep, Value: 20}, true},
		{"fan percent max", SetFan{Unit: FanPercent, Value: 100}, false},
		{"fan percent over", SetFan{Unit: FanPercent, Value: 101}, true},
		{"fan unit unknown", SetFan{Unit: "Rpm", Value: 1}, true},
		{"time minutes over", SetTime{Hours: 2, Minutes: 60}, true},
		{"clock hours over", SetClock{Hours: 24}, true},
		{"clock ok", SetClock{Hours: 23, Minutes: 59}, false},
		{"temp unit unknown", SetTemp{Unit: "Kelvin", Value: 30}, true},
		{"name 15 bytes", SetDeviceName{Name: "abcdefghijklmno"}, false},
		{"name 16 bytes", SetDeviceName{Name: "abcdefghijklmnop"}, true},
		{"unknown button", Button{Code: 0x7f}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("Validate()=%v, wantErr=%v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCommand) {
				t.Fatalf("expected ErrInvalidCommand, got %v", err)
			}
		})
	}
}

func TestDeviceStatus_JSONUsesVariantNames(t *testing.T) {
	st := DeviceStatus{
		RemainingDuration:  Duration{Secs: 5430},
		OperatingMode:      ModeExtendedHeat,
		ShutdownCode:       ShutdownFanFailure,
		CurrentUpdateState: UpdateNoUpdateNeeded,
		FanStep:            40,
	}
	b, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	if raw["operating_mode"] != "ExtendedHeat" || raw["shutdown_code"] != "FanFailure" || raw["current_update_state"] != "NoUpdateNeeded" {
		t.Fatalf("unexpected enum encoding: %s", b)
	}

	var back DeviceStatus
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != st {
		t.Fatalf("decoded %+v, want %+v", back, st)
	}

	if err := json.Unmarshal([]byte(`{"operating_mode":"Sauna"}`), &back); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestDuration_HoursMinutes(t *testing.T) {
	h, m := Duration{Secs: 5430}.HoursMinutes()
	if h != 1 || m != 30 {
		t.Fatalf("got %d:%d, want 1:30", h, m)
	}
	if got := DurationOf(Duration{Secs: 90, Nanos: 5}.Std()); got != (Duration{Secs: 90, Nanos: 5}) {
		t.Fatalf("round trip through time.Duration: %+v", got)
	}
}
