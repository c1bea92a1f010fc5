package climate

import "climate_control/internal/models"

// buttonFor returns the button that switches the device into mode.
func buttonFor(mode models.OperatingMode) (models.ButtonCode, error) {
	switch mode {
	case models.ModeCool:
		return models.ButtonCool, nil
	case models.ModeDry:
		return models.ButtonDry, nil
	case models.ModeExtendedHeat:
		return models.ButtonExternalHeat, nil
	default:
		return 0, &UnsupportedModeError{Mode: mode}
	}
}

// BuildTransition returns the commands that take a device in state current to targetF,
// using DefaultRanges.
func BuildTransition(current models.DeviceStatus, targetF int) ([]models.Command, error) {
	return defaultResolver.BuildTransition(current, targetF)
}

// BuildTransition returns the commands that take a device in state current to targetF.
//
// A mode button resets the run timer and fan speed to the new mode's defaults, so a mode
// switch is followed by SetTime and SetFan carrying the values captured before the switch.
// SetTemp always comes last. The restored values are not checked against the new mode's
// limits.
func (r *Resolver) BuildTransition(current models.DeviceStatus, targetF int) ([]models.Command, error) {
	required, err := r.Resolve(targetF)
	if err != nil {
		return nil, err
	}

	setTemp := models.SetTemp{Unit: models.Fahrenheit, Value: uint8(targetF)}
	if current.OperatingMode == required {
		return []models.Command{setTemp}, nil
	}

	button, err := buttonFor(required)
	if err != nil {
		return nil, err
	}

	timer := current.RemainingDuration
	fan := current.FanStep
	hours, minutes := timer.HoursMinutes()

	return []models.Command{
		models.Button{Code: button},
		models.SetTime{Hours: uint8(hours), Minutes: uint8(minutes)},
		models.SetFan{Unit: models.FanPercent, Value: fan},
		setTemp,
	}, nil
}
