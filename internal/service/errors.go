package service

import "errors"

var (
	// ErrNoActiveAdapter means no session has selected an adapter yet.
	ErrNoActiveAdapter = errors.New("no active adapter")
	// ErrNoAdapters means the link reports no adapters at all.
	ErrNoAdapters = errors.New("no adapters available")
	// ErrNoStatus means no status has been received for the device since the session attached.
	ErrNoStatus = errors.New("no status received for device")
	// ErrSessionEnded means the session was torn down or switched adapters while a sequence was running.
	ErrSessionEnded = errors.New("session ended")
	// ErrInvalidTimeRange is returned when a log filter has From after To.
	ErrInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)
