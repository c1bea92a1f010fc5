// Package link defines the boundary to the process that talks to devices over the radio.
package link

import (
	"context"
	"errors"

	"climate_control/internal/models"
)

var (
	ErrNotConnected  = errors.New("device link: not connected")
	ErrTimeout       = errors.New("device link: timed out")
	ErrRejected      = errors.New("device link: command rejected")
	ErrClosed        = errors.New("device link: closed")
	ErrUnknownDevice = errors.New("device link: unknown device")
)

// Link is the device link collaborator.
//
// Connect and Disconnect are fire-and-forget: a nil error only means the request was sent.
// Dispatch returns once the device link reports the command complete; callers issuing a
// sequence wait for each Dispatch before sending the next.
type Link interface {
	ListAdapters(ctx context.Context) ([]string, error)
	ScanDevices(ctx context.Context, adapter string) ([]string, error)
	Connect(ctx context.Context, adapter, deviceID string) error
	Disconnect(ctx context.Context, adapter, deviceID string) error
	Dispatch(ctx context.Context, adapter, deviceID string, cmd models.Command) error
	Subscribe(ctx context.Context, adapter string) (Subscription, error)
}

// Subscription is an open status push stream for one adapter.
// C is closed when the stream ends, either after Close or because the link went away.
type Subscription interface {
	C() <-chan models.DeviceStatusEvent
	Close() error
}
