package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ButtonCode is a physical button on the device.
type ButtonCode uint8

const (
	ButtonStop                   ButtonCode = 0x01
	ButtonCool                   ButtonCode = 0x02
	ButtonHeat                   ButtonCode = 0x03
	ButtonTurbo                  ButtonCode = 0x04
	ButtonDry                    ButtonCode = 0x05
	ButtonExternalHeat           ButtonCode = 0x06
	ButtonFanUp                  ButtonCode = 0x10
	ButtonFanDown                ButtonCode = 0x11
	ButtonTempUp1C               ButtonCode = 0x12
	ButtonTempDown1C             ButtonCode = 0x13
	ButtonTempUp1F               ButtonCode = 0x14
	ButtonTempDown1F             ButtonCode = 0x15
	ButtonMemory1Recall          ButtonCode = 0x20
	ButtonMemory2Recall          ButtonCode = 0x21
	ButtonMemory3Recall          ButtonCode = 0x22
	ButtonMemory1Store           ButtonCode = 0x28
	ButtonMemory2Store           ButtonCode = 0x29
	ButtonMemory3Store           ButtonCode = 0x2a
	ButtonStartConnectionTest    ButtonCode = 0x42
	ButtonStartFirmwareUpdate    ButtonCode = 0x43
	ButtonSetLowPowerMode        ButtonCode = 0x44
	ButtonSetNormalPowerMode     ButtonCode = 0x45
	ButtonEnableRingOfLight      ButtonCode = 0x46
	ButtonDisableRingOfLight     ButtonCode = 0x47
	ButtonMuteBeeper             ButtonCode = 0x48
	ButtonUnmuteBeeper           ButtonCode = 0x49
	ButtonResetToFactorySettings ButtonCode = 0x4c
	ButtonEnableWiFiBT           ButtonCode = 0x4d
	ButtonDisableWiFiBT          ButtonCode = 0x4e
	ButtonSetConfigCompleteFlag  ButtonCode = 0x4f
)

var buttonCodeNames = map[ButtonCode]string{
	ButtonStop:                   "Stop",
	ButtonCool:                   "Cool",
	ButtonHeat:                   "Heat",
	ButtonTurbo:                  "Turbo",
	ButtonDry:                    "Dry",
	ButtonExternalHeat:           "ExternalHeat",
	ButtonFanUp:                  "FanUp",
	ButtonFanDown:                "FanDown",
	ButtonTempUp1C:               "TempUp1C",
	ButtonTempDown1C:             "TempDown1C",
	ButtonTempUp1F:               "TempUp1F",
	ButtonTempDown1F:             "TempDown1F",
	ButtonMemory1Recall:          "Memory1Recall",
	ButtonMemory2Recall:          "Memory2Recall",
	ButtonMemory3Recall:          "Memory3Recall",
	ButtonMemory1Store:           "Memory1Store",
	ButtonMemory2Store:           "Memory2Store",
	ButtonMemory3Store:           "Memory3Store",
	ButtonStartConnectionTest:    "StartConnectionTest",
	ButtonStartFirmwareUpdate:    "StartFirmwareUpdate",
	ButtonSetLowPowerMode:        "SetLowPowerMode",
	ButtonSetNormalPowerMode:     "SetNormalPowerMode",
	ButtonEnableRingOfLight:      "EnableRingOfLight",
	ButtonDisableRingOfLight:     "DisableRingOfLight",
	ButtonMuteBeeper:             "MuteBeeper",
	ButtonUnmuteBeeper:           "UnmuteBeeper",
	ButtonResetToFactorySettings: "ResetToFactorySettings",
	ButtonEnableWiFiBT:           "EnableWiFiBT",
	ButtonDisableWiFiBT:          "DisableWiFiBT",
	ButtonSetConfigCompleteFlag:  "SetConfigCompleteFlag",
}

func (b ButtonCode) String() string {
	if s, ok := buttonCodeNames[b]; ok {
		return s
	}
	return fmt.Sprintf("ButtonCode(%#02x)", uint8(b))
}

func (b ButtonCode) MarshalJSON() ([]byte, error) {
	return marshalName(buttonCodeNames, b)
}

func (b *ButtonCode) UnmarshalJSON(data []byte) error {
	return unmarshalName(buttonCodeNames, data, b, "button code")
}

// TempUnit tags a temperature value crossing the device boundary.
type TempUnit string

const (
	Celsius    TempUnit = "Celsius"
	Fahrenheit TempUnit = "Fahrenheit"
)

// FanUnit tags a fan speed value.
type FanUnit string

const (
	FanStep    FanUnit = "Step"
	FanPercent FanUnit = "Percent"
)

// Fan speed limits accepted by the device.
const (
	MaxFanStep    = 19
	MaxFanPercent = 100
	MaxDeviceName = 15
)

var ErrInvalidCommand = errors.New("invalid command")

// Command is one instruction to the device. The set of variants is closed:
// Button, SetTime, SetTemp, SetFan, SetClock and SetDeviceName.
type Command interface {
	// Kind is the variant name used in the tagged JSON form.
	Kind() string
	// Validate reports whether the parameters are within device limits.
	Validate() error
	sealed()
}

type Button struct {
	Code ButtonCode
}

type SetTime struct {
	Hours   uint8 `json:"hours"`
	Minutes uint8 `json:"minutes"`
}

type SetTemp struct {
	Unit  TempUnit `json:"type"`
	Value uint8    `json:"value"`
}

type SetFan struct {
	Unit  FanUnit `json:"type"`
	Value uint8   `json:"value"`
}

type SetClock struct {
	Hours   uint8 `json:"hours"`
	Minutes uint8 `json:"minutes"`
}

// SetDeviceName renames the device (SetParam/DeviceName on the wire).
type SetDeviceName struct {
	Name string
}

func (Button) Kind() string        { return "Button" }
func (SetTime) Kind() string       { return "SetTime" }
func (SetTemp) Kind() string       { return "SetTemp" }
func (SetFan) Kind() string        { return "SetFan" }
func (SetClock) Kind() string      { return "SetClock" }
func (SetDeviceName) Kind() string { return "SetParam" }

func (Button) sealed()        {}
func (SetTime) sealed()       {}
func (SetTemp) sealed()       {}
func (SetFan) sealed()        {}
func (SetClock) sealed()      {}
func (SetDeviceName) sealed() {}

func (c Button) Validate() error {
	if _, ok := buttonCodeNames[c.Code]; !ok {
		return fmt.Errorf("%w: unknown button %s", ErrInvalidCommand, c.Code)
	}
	return nil
}

func (c SetTime) Validate() error {
	if c.Minutes > 59 {
		return fmt.Errorf("%w: minutes %d > 59", ErrInvalidCommand, c.Minutes)
	}
	return nil
}

func (c SetTemp) Validate() error {
	switch c.Unit {
	case Celsius, Fahrenheit:
		return nil
	default:
		return fmt.Errorf("%w: temperature unit %q", ErrInvalidCommand, c.Unit)
	}
}

func (c SetFan) Validate() error {
	switch c.Unit {
	case FanStep:
		if c.Value > MaxFanStep {
			return fmt.Errorf("%w: fan step %d > %d", ErrInvalidCommand, c.Value, MaxFanStep)
		}
	case FanPercent:
		if c.Value > MaxFanPercent {
			return fmt.Errorf("%w: fan percent %d > %d", ErrInvalidCommand, c.Value, MaxFanPercent)
		}
	default:
		return fmt.Errorf("%w: fan unit %q", ErrInvalidCommand, c.Unit)
	}
	return nil
}

func (c SetClock) Validate() error {
	if c.Hours > 23 || c.Minutes > 59 {
		return fmt.Errorf("%w: clock %02d:%02d", ErrInvalidCommand, c.Hours, c.Minutes)
	}
	return nil
}

func (c SetDeviceName) Validate() error {
	if len(c.Name) > MaxDeviceName {
		return fmt.Errorf("%w: device name longer than %d bytes", ErrInvalidCommand, MaxDeviceName)
	}
	return nil
}

// taggedCommand is the {"type": ..., "content": ...} envelope.
type taggedCommand struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type deviceNameParam struct {
	DeviceName string `json:"DeviceName"`
}

// MarshalCommand encodes c in the tagged JSON form.
func MarshalCommand(c Command) ([]byte, error) {
	var content any
	switch v := c.(type) {
	case Button:
		content = v.Code
	case SetTime, SetTemp, SetFan, SetClock:
		content = v
	case SetDeviceName:
		content = deviceNameParam{DeviceName: v.Name}
	default:
		return nil, fmt.Errorf("%w: unsupported command %T", ErrInvalidCommand, c)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Kind(), err)
	}
	return json.Marshal(taggedCommand{Type: c.Kind(), Content: raw})
}

// UnmarshalCommand decodes the tagged JSON form. It does not call Validate.
func UnmarshalCommand(b []byte) (Command, error) {
	var env taggedCommand
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if len(env.Content) == 0 {
		return nil, fmt.Errorf("%w: missing content", ErrInvalidCommand)
	}

	var (
		cmd Command
		err error
	)
	switch env.Type {
	case "Button":
		var v Button
		err = json.Unmarshal(env.Content, &v.Code)
		cmd = v
	case "SetTime":
		var v SetTime
		err = json.Unmarshal(env.Content, &v)
		cmd = v
	case "SetTemp":
		var v SetTemp
		err = json.Unmarshal(env.Content, &v)
		cmd = v
	case "SetFan":
		var v SetFan
		err = json.Unmarshal(env.Content, &v)
		cmd = v
	case "SetClock":
		var v SetClock
		err = json.Unmarshal(env.Content, &v)
		cmd = v
	case "SetParam":
		var p deviceNameParam
		err = json.Unmarshal(env.Content, &p)
		cmd = SetDeviceName{Name: p.DeviceName}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCommand, env.Type, err)
	}
	return cmd, nil
}

// CommandEnvelope carries a Command inside a JSON document.
type CommandEnvelope struct {
	Command Command
}

func (e CommandEnvelope) MarshalJSON() ([]byte, error) {
	return MarshalCommand(e.Command)
}

func (e *CommandEnvelope) UnmarshalJSON(b []byte) error {
	c, err := UnmarshalCommand(b)
	if err != nil {
		return err
	}
	e.Command = c
	return nil
}
