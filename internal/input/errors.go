// Package input arbitrates between the human devices and the autopilot and
// integrates the wheel and headset hardware into the tick loop.
package input

import (
	"errors"

	"github.com/Alia5/egodrive/vehicle"
)

var (
	// ErrDeviceUnavailable is returned while a device is not connected. It is
	// expected and retried on the next tick.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrNullEntity is returned for actions issued while no vehicle is bound.
	ErrNullEntity = vehicle.ErrNullEntity
	// ErrDriverUpdateFailed is returned when the driver could not refresh its
	// state and no earlier sample exists.
	ErrDriverUpdateFailed = errors.New("wheel driver update failed")
)
