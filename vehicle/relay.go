package vehicle

import "fmt"

// Relay forwards control actions to the bound vehicle. It does not decide
// precedence: the last writer of a tick wins. Every action fails with
// ErrNullEntity while no vehicle is bound.
type Relay struct {
	v Controls
}

// NewRelay returns a relay bound to v, which may be nil.
func NewRelay(v Controls) *Relay { return &Relay{v: v} }

// Bind replaces the target vehicle, e.g. after a respawn. nil unbinds.
func (r *Relay) Bind(v Controls) { r.v = v }

// Vehicle returns the bound vehicle or nil.
func (r *Relay) Vehicle() Controls { return r.v }

func (r *Relay) do(action string, fn func(Controls)) error {
	if r.v == nil {
		return fmt.Errorf("%s: %w", action, ErrNullEntity)
	}
	fn(r.v)
	return nil
}

func (r *Relay) SetSteering(v float64) error {
	return r.do("set steering", func(c Controls) { c.SetSteering(v) })
}

func (r *Relay) SetThrottle(v float64) error {
	return r.do("set throttle", func(c Controls) { c.SetThrottle(v) })
}

func (r *Relay) SetBrake(v float64) error {
	return r.do("set brake", func(c Controls) { c.SetBrake(v) })
}

func (r *Relay) PressReverse() error {
	return r.do("press reverse", Controls.PressReverse)
}

func (r *Relay) ReleaseReverse() error {
	return r.do("release reverse", Controls.ReleaseReverse)
}

func (r *Relay) PressTurnSignalLeft() error {
	return r.do("press turn signal left", Controls.PressTurnSignalLeft)
}

func (r *Relay) ReleaseTurnSignalLeft() error {
	return r.do("release turn signal left", Controls.ReleaseTurnSignalLeft)
}

func (r *Relay) PressTurnSignalRight() error {
	return r.do("press turn signal right", Controls.PressTurnSignalRight)
}

func (r *Relay) ReleaseTurnSignalRight() error {
	return r.do("release turn signal right", Controls.ReleaseTurnSignalRight)
}

func (r *Relay) PressHandbrake() error {
	return r.do("press handbrake", Controls.PressHandbrake)
}

func (r *Relay) ReleaseHandbrake() error {
	return r.do("release handbrake", Controls.ReleaseHandbrake)
}

func (r *Relay) CameraNudge(dir CameraDirection) error {
	return r.do("camera "+dir.String(), func(c Controls) { c.CameraNudge(dir) })
}

func (r *Relay) CameraFwd() error   { return r.CameraNudge(CameraForward) }
func (r *Relay) CameraBack() error  { return r.CameraNudge(CameraBack) }
func (r *Relay) CameraLeft() error  { return r.CameraNudge(CameraLeft) }
func (r *Relay) CameraRight() error { return r.CameraNudge(CameraRight) }
func (r *Relay) CameraUp() error    { return r.CameraNudge(CameraUp) }
func (r *Relay) CameraDown() error  { return r.CameraNudge(CameraDown) }

func (r *Relay) MouseLookUp(delta float64) error {
	return r.do("mouse look up", func(c Controls) { c.MouseLookUp(delta) })
}

func (r *Relay) MouseTurn(delta float64) error {
	return r.do("mouse turn", func(c Controls) { c.MouseTurn(delta) })
}

func (r *Relay) SetAutopilot(engaged bool) error {
	return r.do("set autopilot", func(c Controls) { c.SetAutopilot(engaged) })
}

// AutopilotEngaged reports false when no vehicle is bound.
func (r *Relay) AutopilotEngaged() bool {
	return r.v != nil && r.v.AutopilotEngaged()
}

func (r *Relay) VelocityMagnitude() (float64, error) {
	if r.v == nil {
		return 0, fmt.Errorf("velocity: %w", ErrNullEntity)
	}
	return r.v.VelocityMagnitude(), nil
}
