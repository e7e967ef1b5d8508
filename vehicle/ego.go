package vehicle

import (
	"math"
	"time"
)

// InputConfig configures how inputs act on the ego vehicle.
type InputConfig struct {
	ScaleSteering          float64       `help:"Scale applied to steering input" default:"1.0" env:"EGODRIVE_SCALE_STEERING"`
	ScaleThrottle          float64       `help:"Scale applied to throttle input" default:"1.0" env:"EGODRIVE_SCALE_THROTTLE"`
	ScaleBrake             float64       `help:"Scale applied to brake input" default:"1.0" env:"EGODRIVE_SCALE_BRAKE"`
	InvertMouseY           bool          `help:"Invert vertical mouse look" default:"false" env:"EGODRIVE_INVERT_MOUSE_Y"`
	ScaleMouseX            float64       `help:"Horizontal mouse look scale" default:"1.0" env:"EGODRIVE_SCALE_MOUSE_X"`
	ScaleMouseY            float64       `help:"Vertical mouse look scale" default:"1.0" env:"EGODRIVE_SCALE_MOUSE_Y"`
	EnableTurnSignalAction bool          `help:"Allow turn signals to be toggled by input" default:"true" env:"EGODRIVE_ENABLE_TURN_SIGNAL_ACTION"`
	TurnSignalDuration     time.Duration `help:"Time a turn signal stays on after a press" default:"3s" env:"EGODRIVE_TURN_SIGNAL_DURATION"`
	CameraStep             float64       `help:"Camera nudge distance in cm" default:"1.0" env:"EGODRIVE_CAMERA_STEP"`
}

// DefaultInputConfig mirrors the kong defaults for use outside the CLI.
func DefaultInputConfig() InputConfig {
	return InputConfig{
		ScaleSteering:          1,
		ScaleThrottle:          1,
		ScaleBrake:             1,
		ScaleMouseX:            1,
		ScaleMouseY:            1,
		EnableTurnSignalAction: true,
		TurnSignalDuration:     3 * time.Second,
		CameraStep:             1,
	}
}

// Camera look limits in degrees.
const (
	MinPitch = -85.0
	MaxPitch = 70.0
	MaxYaw   = 90.0
)

// Longitudinal model constants, SI units.
const (
	maxAccel       = 3.5
	brakeDecel     = 9.0
	handbrakeDecel = 6.0
	rollingDecel   = 0.3
	dragCoeff      = 0.0004
	maxSpeed       = 45.0
	maxReverse     = 8.0
)

// Camera is the driver camera offset (cm, x forward, y right, z up) and look
// rotation (degrees).
type Camera struct {
	Offset [3]float64 `json:"offset"`
	Pitch  float64    `json:"pitch"`
	Yaw    float64    `json:"yaw"`
}

// EgoVehicle is the vehicle driven by the session.
// It is not safe for concurrent use; the tick loop owns it.
type EgoVehicle struct {
	cfg    InputConfig
	sounds Sounds

	inputs    UserInputs
	reverse   EdgeLatch
	turnLeft  EdgeLatch
	turnRight EdgeLatch
	handbrake EdgeLatch

	clock     time.Duration
	leftDies  time.Duration
	rightDies time.Duration

	camera    Camera
	speed     float64
	autopilot bool
}

// NewEgoVehicle returns a vehicle at rest. sounds may be nil.
func NewEgoVehicle(cfg InputConfig, sounds Sounds) *EgoVehicle {
	if sounds == nil {
		sounds = SoundFunc(func(Sound) {})
	}
	return &EgoVehicle{cfg: cfg, sounds: sounds}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func (e *EgoVehicle) SetSteering(v float64) {
	e.inputs.Steering = clamp(v*e.cfg.ScaleSteering, -1, 1)
}

func (e *EgoVehicle) SetThrottle(v float64) {
	e.inputs.Throttle = clamp(v*e.cfg.ScaleThrottle, 0, 1)
}

func (e *EgoVehicle) SetBrake(v float64) {
	e.inputs.Brake = clamp(v*e.cfg.ScaleBrake, 0, 1)
}

// PressReverse toggles the reverse gear once per press.
func (e *EgoVehicle) PressReverse() {
	if !e.reverse.Trigger() {
		return
	}
	e.inputs.ReverseToggled = !e.inputs.ReverseToggled
	e.sounds.Play(SoundGearShift)
}

func (e *EgoVehicle) ReleaseReverse() { e.reverse.Release() }

func (e *EgoVehicle) PressTurnSignalLeft() {
	if !e.cfg.EnableTurnSignalAction || !e.turnLeft.Trigger() {
		return
	}
	e.inputs.TurnSignalLeftOn = true
	e.inputs.TurnSignalRightOn = false
	e.leftDies = e.clock + e.cfg.TurnSignalDuration
	e.sounds.Play(SoundTurnSignal)
}

func (e *EgoVehicle) ReleaseTurnSignalLeft() { e.turnLeft.Release() }

func (e *EgoVehicle) PressTurnSignalRight() {
	if !e.cfg.EnableTurnSignalAction || !e.turnRight.Trigger() {
		return
	}
	e.inputs.TurnSignalRightOn = true
	e.inputs.TurnSignalLeftOn = false
	e.rightDies = e.clock + e.cfg.TurnSignalDuration
	e.sounds.Play(SoundTurnSignal)
}

func (e *EgoVehicle) ReleaseTurnSignalRight() { e.turnRight.Release() }

func (e *EgoVehicle) PressHandbrake() {
	if !e.handbrake.Trigger() {
		return
	}
	e.inputs.HandbrakeHeld = true
}

func (e *EgoVehicle) ReleaseHandbrake() {
	e.handbrake.Release()
	e.inputs.HandbrakeHeld = false
}

func (e *EgoVehicle) CameraNudge(dir CameraDirection) {
	step := e.cfg.CameraStep
	switch dir {
	case CameraForward:
		e.camera.Offset[0] += step
	case CameraBack:
		e.camera.Offset[0] -= step
	case CameraRight:
		e.camera.Offset[1] += step
	case CameraLeft:
		e.camera.Offset[1] -= step
	case CameraUp:
		e.camera.Offset[2] += step
	case CameraDown:
		e.camera.Offset[2] -= step
	}
}

// MouseLookUp pitches the camera by a vertical mouse delta. Mouse deltas
// grow downwards, so a positive delta looks down unless the axis is
// inverted.
func (e *EgoVehicle) MouseLookUp(delta float64) {
	d := -delta * e.cfg.ScaleMouseY
	if e.cfg.InvertMouseY {
		d = -d
	}
	e.camera.Pitch = clamp(e.camera.Pitch+d, MinPitch, MaxPitch)
}

func (e *EgoVehicle) MouseTurn(delta float64) {
	e.camera.Yaw = clamp(e.camera.Yaw+delta*e.cfg.ScaleMouseX, -MaxYaw, MaxYaw)
}

func (e *EgoVehicle) VelocityMagnitude() float64 { return math.Abs(e.speed) }

func (e *EgoVehicle) AutopilotEngaged() bool { return e.autopilot }

func (e *EgoVehicle) SetAutopilot(engaged bool) { e.autopilot = engaged }

func (e *EgoVehicle) Inputs() UserInputs { return e.inputs }

// Camera returns the current camera state.
func (e *EgoVehicle) Camera() Camera { return e.camera }

// Speed returns the signed longitudinal speed in m/s; negative when reversing.
func (e *EgoVehicle) Speed() float64 { return e.speed }

// Tick advances turn signal timers and the longitudinal model by dt.
func (e *EgoVehicle) Tick(dt time.Duration) {
	e.clock += dt
	if e.inputs.TurnSignalLeftOn && e.clock >= e.leftDies {
		e.inputs.TurnSignalLeftOn = false
	}
	if e.inputs.TurnSignalRightOn && e.clock >= e.rightDies {
		e.inputs.TurnSignalRightOn = false
	}

	s := dt.Seconds()
	dir := 1.0
	if e.inputs.ReverseToggled {
		dir = -1
	}

	v := e.speed + dir*e.inputs.Throttle*maxAccel*s
	decel := e.inputs.Brake*brakeDecel + rollingDecel + dragCoeff*v*v
	if e.inputs.HandbrakeHeld {
		decel += handbrakeDecel
	}
	// Resistive forces only shrink the magnitude, never flip direction.
	if mag := math.Abs(v) - decel*s; mag > 0 {
		v = math.Copysign(mag, v)
	} else {
		v = 0
	}
	e.speed = clamp(v, -maxReverse, maxSpeed)
}
