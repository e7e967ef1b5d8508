// Package vehicle holds the ego vehicle's control surfaces and the relay
// through which every input source actuates them.
package vehicle

import "errors"

// ErrNullEntity is returned when an action targets a vehicle that is not bound.
var ErrNullEntity = errors.New("no vehicle bound")

// UserInputs is the control state read by physics each tick.
type UserInputs struct {
	Steering          float64 `json:"steering"`
	Throttle          float64 `json:"throttle"`
	Brake             float64 `json:"brake"`
	HandbrakeHeld     bool    `json:"handbrakeHeld"`
	ReverseToggled    bool    `json:"reverseToggled"`
	TurnSignalLeftOn  bool    `json:"turnSignalLeftOn"`
	TurnSignalRightOn bool    `json:"turnSignalRightOn"`
}

// CameraDirection is a one-shot camera offset nudge.
type CameraDirection int

const (
	CameraForward CameraDirection = iota
	CameraBack
	CameraLeft
	CameraRight
	CameraUp
	CameraDown
)

var cameraDirectionNames = [...]string{"forward", "back", "left", "right", "up", "down"}

func (d CameraDirection) String() string {
	if d < 0 || int(d) >= len(cameraDirectionNames) {
		return "unknown"
	}
	return cameraDirectionNames[d]
}

// ParseCameraDirection maps a direction name onto a CameraDirection.
func ParseCameraDirection(s string) (CameraDirection, bool) {
	if s == "fwd" {
		return CameraForward, true
	}
	for i, n := range cameraDirectionNames {
		if n == s {
			return CameraDirection(i), true
		}
	}
	return 0, false
}

// Controls is the actuation surface of a vehicle.
type Controls interface {
	SetSteering(v float64)
	SetThrottle(v float64)
	SetBrake(v float64)
	PressReverse()
	ReleaseReverse()
	PressTurnSignalLeft()
	ReleaseTurnSignalLeft()
	PressTurnSignalRight()
	ReleaseTurnSignalRight()
	PressHandbrake()
	ReleaseHandbrake()
	CameraNudge(dir CameraDirection)
	// MouseLookUp and MouseTurn rotate the camera by a raw mouse delta.
	MouseLookUp(delta float64)
	MouseTurn(delta float64)
	VelocityMagnitude() float64
	AutopilotEngaged() bool
	SetAutopilot(engaged bool)
	Inputs() UserInputs
}

// Sound identifies a cue played by the vehicle.
type Sound int

const (
	SoundGearShift Sound = iota
	SoundTurnSignal
	SoundTORAlert
)

func (s Sound) String() string {
	switch s {
	case SoundGearShift:
		return "gear-shift"
	case SoundTurnSignal:
		return "turn-signal"
	case SoundTORAlert:
		return "tor-alert"
	default:
		return "unknown"
	}
}

// Sounds plays audio cues. Implementations must not block.
type Sounds interface {
	Play(Sound)
}

// SoundFunc adapts a function to Sounds.
type SoundFunc func(Sound)

func (f SoundFunc) Play(s Sound) { f(s) }
