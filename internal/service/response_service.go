package service

import (
	"time"

	"climate_control/internal/models"
)

// LogFilter supports history filtering by time range, type and device.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "", "COMMAND", "MODE_CHANGE", "CONNECT", "DISCONNECT", "ATTACH", "DETACH", "ERROR"
	DeviceID string
}

// SessionInfo reports which adapter is selected and whether its stream is attached.
type SessionInfo struct {
	Adapter string `json:"adapter"`
	State   string `json:"state"`
}

// StatusView is a cached status with Fahrenheit readings alongside the raw °C values.
type StatusView struct {
	Adapter  string              `json:"adapter"`
	DeviceID string              `json:"device_id"`
	ActualF  int                 `json:"actual_f"`
	TargetF  int                 `json:"target_f"`
	Status   models.DeviceStatus `json:"status"`
}

func newStatusView(adapter, deviceID string, st models.DeviceStatus) StatusView {
	return StatusView{
		Adapter:  adapter,
		DeviceID: deviceID,
		ActualF:  roundF(st.ActualTemp),
		TargetF:  roundF(st.TargetTemp),
		Status:   st,
	}
}

func roundF(c float64) int {
	f := models.CToF(c)
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
