package models

import "time"

// Event types recorded in the device event log.
const (
	EventCommand    = "COMMAND"
	EventModeChange = "MODE_CHANGE"
	EventConnect    = "CONNECT"
	EventDisconnect = "DISCONNECT"
	EventAttach     = "ATTACH"
	EventDetach     = "DETACH"
	EventError      = "ERROR"
)

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // COMMAND | MODE_CHANGE | CONNECT | DISCONNECT | ATTACH | DETACH | ERROR
	DeviceID    string    `json:"device_id,omitempty"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// StatusRecord is one received status kept in the history table.
type StatusRecord struct {
	ID         int64        `json:"id"`
	Adapter    string       `json:"adapter"`
	DeviceID   string       `json:"device_id"`
	ReceivedAt time.Time    `json:"received_at"`
	Status     DeviceStatus `json:"status"`
}
