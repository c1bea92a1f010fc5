package climate

import (
	"errors"
	"fmt"

	"climate_control/internal/models"
)

var (
	ErrOutOfRange      = errors.New("target temperature out of range")
	ErrUnsupportedMode = errors.New("operating mode has no button")
	ErrInvalidRanges   = errors.New("invalid mode ranges")
)

// OutOfRangeError reports a target temperature that no mode can reach.
type OutOfRangeError struct {
	TargetF int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("target temperature %d°F is outside every mode range", e.TargetF)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// UnsupportedModeError reports a mode that cannot be selected with a button press.
type UnsupportedModeError struct {
	Mode models.OperatingMode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("operating mode %s cannot be selected by button", e.Mode)
}

func (e *UnsupportedModeError) Is(target error) bool { return target == ErrUnsupportedMode }
