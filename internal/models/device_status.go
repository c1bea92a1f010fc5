package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// OperatingMode is the device's current operating mode.
type OperatingMode uint8

const (
	ModeStandby OperatingMode = iota
	ModeNormalHeat
	ModeTurboHeat
	ModeExtendedHeat
	ModeCool
	ModeDry
	ModeWait
)

var operatingModeNames = map[OperatingMode]string{
	ModeStandby:      "Standby",
	ModeNormalHeat:   "NormalHeat",
	ModeTurboHeat:    "TurboHeat",
	ModeExtendedHeat: "ExtendedHeat",
	ModeCool:         "Cool",
	ModeDry:          "Dry",
	ModeWait:         "Wait",
}

func (m OperatingMode) String() string {
	if s, ok := operatingModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("OperatingMode(%d)", uint8(m))
}

func (m OperatingMode) MarshalJSON() ([]byte, error) {
	return marshalName(operatingModeNames, m)
}

func (m *OperatingMode) UnmarshalJSON(b []byte) error {
	return unmarshalName(operatingModeNames, b, m, "operating mode")
}

// ShutdownCode explains why the device last shut down.
type ShutdownCode uint8

const (
	ShutdownNormal ShutdownCode = iota
	ShutdownInvalidADC
	ShutdownThermistorTrackingError
	ShutdownFastOverTempTrip
	ShutdownSlowOverTempTrip
	ShutdownFanFailure
	ShutdownHeaterPowerStandby
	ShutdownExtenderThermalTrip
)

var shutdownCodeNames = map[ShutdownCode]string{
	ShutdownNormal:                  "Normal",
	ShutdownInvalidADC:              "InvalidADC",
	ShutdownThermistorTrackingError: "ThermistorTrackingError",
	ShutdownFastOverTempTrip:        "FastOverTempTrip",
	ShutdownSlowOverTempTrip:        "SlowOverTempTrip",
	ShutdownFanFailure:              "FanFailure",
	ShutdownHeaterPowerStandby:      "HeaterPowerStandby",
	ShutdownExtenderThermalTrip:     "ExtenderThermalTrip",
}

func (c ShutdownCode) String() string {
	if s, ok := shutdownCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ShutdownCode(%d)", uint8(c))
}

func (c ShutdownCode) MarshalJSON() ([]byte, error) {
	return marshalName(shutdownCodeNames, c)
}

func (c *ShutdownCode) UnmarshalJSON(b []byte) error {
	return unmarshalName(shutdownCodeNames, b, c, "shutdown code")
}

// UpdateStatus is the state of the device's firmware updater.
type UpdateStatus uint8

const (
	UpdateIdle                     UpdateStatus = 0
	UpdateStarting                 UpdateStatus = 1
	UpdateConnectingToAP           UpdateStatus = 2
	UpdateGotIPAddress             UpdateStatus = 3
	UpdateCheckingConnection       UpdateStatus = 4
	UpdateCheckingForUpdate        UpdateStatus = 5
	UpdateUpdating                 UpdateStatus = 6
	UpdateRestartingDevice         UpdateStatus = 7
	UpdateNoWiFiConfig             UpdateStatus = 20
	UpdateUnableToConnect          UpdateStatus = 21
	UpdateDHCPFailure              UpdateStatus = 22
	UpdateUnableToContactServer    UpdateStatus = 23
	UpdateConnectionTestOK         UpdateStatus = 24
	UpdateConnectionTestFailed     UpdateStatus = 25
	UpdateNoUpdateNeeded           UpdateStatus = 26
	UpdateRadioDisabled            UpdateStatus = 27
	UpdateRestartingDeviceTerminal UpdateStatus = 28
	UpdateFailed                   UpdateStatus = 29
)

var updateStatusNames = map[UpdateStatus]string{
	UpdateIdle:                     "Idle",
	UpdateStarting:                 "Starting",
	UpdateConnectingToAP:           "ConnectingToAP",
	UpdateGotIPAddress:             "GotIPAddress",
	UpdateCheckingConnection:       "CheckingConnection",
	UpdateCheckingForUpdate:        "CheckingForUpdate",
	UpdateUpdating:                 "Updating",
	UpdateRestartingDevice:         "RestartingBedJet",
	UpdateNoWiFiConfig:             "NoWiFiConfig",
	UpdateUnableToConnect:          "UnableToConnect",
	UpdateDHCPFailure:              "DHCPFailure",
	UpdateUnableToContactServer:    "UnableToContactServer",
	UpdateConnectionTestOK:         "ConnectionTestOK",
	UpdateConnectionTestFailed:     "ConnectionTestFailed",
	UpdateNoUpdateNeeded:           "NoUpdateNeeded",
	UpdateRadioDisabled:            "RadioDisabled",
	UpdateRestartingDeviceTerminal: "RestartingBedJetTerminal",
	UpdateFailed:                   "UpdateFailed",
}

func (u UpdateStatus) String() string {
	if s, ok := updateStatusNames[u]; ok {
		return s
	}
	return fmt.Sprintf("UpdateStatus(%d)", uint8(u))
}

func (u UpdateStatus) MarshalJSON() ([]byte, error) {
	return marshalName(updateStatusNames, u)
}

func (u *UpdateStatus) UnmarshalJSON(b []byte) error {
	return unmarshalName(updateStatusNames, b, u, "update status")
}

// Duration is a run time as reported by the device link: whole seconds plus nanoseconds.
type Duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

// DurationOf converts a time.Duration, dropping anything below a nanosecond.
func DurationOf(d time.Duration) Duration {
	if d < 0 {
		return Duration{}
	}
	return Duration{Secs: uint64(d / time.Second), Nanos: uint32(d % time.Second)}
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

// HoursMinutes splits the whole seconds into hours and leftover minutes, truncating.
func (d Duration) HoursMinutes() (hours, minutes uint64) {
	return d.Secs / 3600, (d.Secs % 3600) / 60
}

// DeviceStatus is a full snapshot of one device at one instant.
// Temperatures are degrees Celsius; FanStep is a percentage.
type DeviceStatus struct {
	RemainingDuration  Duration      `json:"remaining_duration"`
	ActualTemp         float64       `json:"actual_temp"`
	TargetTemp         float64       `json:"target_temp"`
	OperatingMode      OperatingMode `json:"operating_mode"`
	FanStep            uint8         `json:"fan_step"`
	MaxDuration        Duration      `json:"max_duration"`
	MinTargetTemp      float64       `json:"min_target_temp"`
	MaxTargetTemp      float64       `json:"max_target_temp"`
	AmbientTemp        float64       `json:"ambient_temp"`
	ShutdownCode       ShutdownCode  `json:"shutdown_code"`
	CurrentUpdateState UpdateStatus  `json:"current_update_state"`
}

// DeviceStatusEvent is an unsolicited status push from the device link.
type DeviceStatusEvent struct {
	ID     string       `json:"id"`
	Status DeviceStatus `json:"status"`
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 { return c*9/5 + 32 }

// FToC converts Fahrenheit to Celsius.
func FToC(f float64) float64 { return (f - 32) * 5 / 9 }

func marshalName[T comparable](names map[T]string, v T) ([]byte, error) {
	s, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("unknown value %v", v)
	}
	return json.Marshal(s)
}

func unmarshalName[T comparable](names map[T]string, b []byte, dst *T, what string) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	for k, name := range names {
		if name == s {
			*dst = k
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, s)
}
