package input

import (
	"log/slog"

	"github.com/Alia5/egodrive/vehicle"
	"github.com/Alia5/egodrive/wheel"
)

// Wheel button ids.
const (
	ButtonReverseFirst    = 0
	ButtonReverseLast     = 3
	ButtonTurnSignalRight = 4
	ButtonTurnSignalLeft  = 5
	ButtonCameraUp        = 19
	ButtonCameraDown      = 20
)

// applyButtons maps held wheel buttons onto vehicle actions and returns the
// number of failed actions. Edge triggering is left to the vehicle latches, so
// a held button is reported as pressed on every tick.
func applyButtons(r *vehicle.Relay, in wheel.NormalizedWheelInput, logger *slog.Logger) int {
	failed := 0
	check := func(err error) {
		if err != nil {
			failed++
			logger.Error("wheel button action failed", "error", err)
		}
	}

	reverse := false
	for id := ButtonReverseFirst; id <= ButtonReverseLast; id++ {
		reverse = reverse || in.Buttons.Has(id)
	}
	if reverse {
		check(r.PressReverse())
	} else {
		check(r.ReleaseReverse())
	}

	if in.Buttons.Has(ButtonTurnSignalRight) {
		check(r.PressTurnSignalRight())
	} else {
		check(r.ReleaseTurnSignalRight())
	}
	if in.Buttons.Has(ButtonTurnSignalLeft) {
		check(r.PressTurnSignalLeft())
	} else {
		check(r.ReleaseTurnSignalLeft())
	}

	if dir, ok := cameraNudge(in); ok {
		check(r.CameraNudge(dir))
	}
	return failed
}

// cameraNudge picks at most one camera nudge: the d-pad wins over the up and
// down buttons, and up wins over down.
func cameraNudge(in wheel.NormalizedWheelInput) (vehicle.CameraDirection, bool) {
	switch in.DPad {
	case wheel.DPadUp:
		return vehicle.CameraForward, true
	case wheel.DPadDown:
		return vehicle.CameraBack, true
	case wheel.DPadRight:
		return vehicle.CameraRight, true
	case wheel.DPadLeft:
		return vehicle.CameraLeft, true
	}
	switch {
	case in.Buttons.Has(ButtonCameraUp):
		return vehicle.CameraUp, true
	case in.Buttons.Has(ButtonCameraDown):
		return vehicle.CameraDown, true
	}
	return 0, false
}
