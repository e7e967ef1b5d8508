package input

import (
	"log/slog"
	"math"

	"github.com/Alia5/egodrive/vehicle"
	"github.com/Alia5/egodrive/wheel"
)

// ControlSource names whoever governs the continuous axes on a tick.
type ControlSource int

const (
	SourceNone ControlSource = iota
	SourceAutopilot
	SourceWheel
	SourceKeyboard
)

func (s ControlSource) String() string {
	switch s {
	case SourceAutopilot:
		return "autopilot"
	case SourceWheel:
		return "wheel"
	case SourceKeyboard:
		return "keyboard"
	default:
		return "none"
	}
}

// Human reports whether s is a human input device.
func (s ControlSource) Human() bool { return s == SourceWheel || s == SourceKeyboard }

const (
	// Tolerance is the per-axis distance under which two wheel readings match.
	Tolerance = 0.01

	restRotation = 0.0
	restPedal    = 0.5
)

// ArbitrationState is the arbiter's memory across ticks.
type ArbitrationState struct {
	// PedalsDefaulting is set until the wheel first leaves its rest reading.
	PedalsDefaulting  bool
	LastWheelRotation float64
	LastAccelPedal    float64
	LastBrakePedal    float64
	// KeyboardOverrideActive is set by a keyboard axis during a tick and
	// cleared at the end of it.
	KeyboardOverrideActive bool
}

// InitialState is the state at session start.
func InitialState() ArbitrationState {
	return ArbitrationState{
		PedalsDefaulting:  true,
		LastWheelRotation: restRotation,
		LastAccelPedal:    restPedal,
		LastBrakePedal:    restPedal,
	}
}

// AxisUpdate is the decision for the continuous axes of one tick.
type AxisUpdate struct {
	// Source is SourceWheel when the wheel reading must be written. Otherwise
	// the wheel does not touch the axes.
	Source   ControlSource
	Steering float64
	Throttle float64
	Brake    float64

	// WheelPath is false when the keyboard skipped the wheel entirely.
	WheelPath bool
}

// AxisCommand is a steering/throttle/brake triple from a control source.
type AxisCommand struct {
	Steering float64 `json:"steering"`
	Throttle float64 `json:"throttle"`
	Brake    float64 `json:"brake"`
}

func near(a, b float64) bool { return math.Abs(a-b) <= Tolerance }

// Decide runs the wheel half of the arbitration for one tick.
//
// While the pedals are defaulting the wheel is ignored; the flag clears for
// good on the first reading that leaves rest, and that reading is still
// ignored. Afterwards the wheel is written unless the autopilot is engaged and
// the reading matches the previous tick on every axis. The previous reading is
// recorded on every tick the wheel path runs.
func Decide(prev ArbitrationState, in wheel.NormalizedWheelInput, autopilotEngaged, keyboardOverride bool) (AxisUpdate, ArbitrationState) {
	next := prev
	next.KeyboardOverrideActive = keyboardOverride
	if keyboardOverride {
		return AxisUpdate{Source: SourceKeyboard}, next
	}

	upd := AxisUpdate{Source: SourceNone, WheelPath: true}
	if autopilotEngaged {
		upd.Source = SourceAutopilot
	}

	if prev.PedalsDefaulting {
		if !near(in.WheelRotation, restRotation) || !near(in.AccelPedal, restPedal) || !near(in.BrakePedal, restPedal) {
			next.PedalsDefaulting = false
		}
	} else {
		unchanged := near(in.WheelRotation, prev.LastWheelRotation) &&
			near(in.AccelPedal, prev.LastAccelPedal) &&
			near(in.BrakePedal, prev.LastBrakePedal)
		if !autopilotEngaged || !unchanged {
			upd.Source = SourceWheel
			upd.Steering = in.WheelRotation
			upd.Throttle = in.AccelPedal
			upd.Brake = in.BrakePedal
		}
	}

	next.LastWheelRotation = in.WheelRotation
	next.LastAccelPedal = in.AccelPedal
	next.LastBrakePedal = in.BrakePedal
	return upd, next
}

// TickInput carries what the control sources produced for one tick.
type TickInput struct {
	// Wheel is nil while the wheel is unavailable.
	Wheel *wheel.NormalizedWheelInput
	// Autopilot is nil when the autopilot has no command.
	Autopilot *AxisCommand
}

// TickResult reports what the arbiter did.
type TickResult struct {
	Governing ControlSource
	Update    AxisUpdate
	// Errors counts relay calls that failed.
	Errors int
}

type keyboardFrame struct {
	steering  *float64
	throttle  *float64
	brake     *float64
	zeroSteer bool
}

// Arbiter owns the arbitration state and is the single writer of the
// continuous axes. Keyboard callbacks collect into the current tick.
type Arbiter struct {
	relay  *vehicle.Relay
	logger *slog.Logger
	state  ArbitrationState
	kb     keyboardFrame
}

// NewArbiter returns an arbiter writing through relay.
func NewArbiter(relay *vehicle.Relay, logger *slog.Logger) *Arbiter {
	return &Arbiter{
		relay:  relay,
		logger: logger.With("component", "arbiter"),
		state:  InitialState(),
	}
}

// State returns the current arbitration state.
func (a *Arbiter) State() ArbitrationState { return a.state }

// KeyboardSteer is the steering axis callback. Zero still zeroes steering
// but does not override the wheel.
func (a *Arbiter) KeyboardSteer(v float64) {
	if v == 0 {
		a.kb.zeroSteer = true
		return
	}
	a.kb.steering = &v
	a.state.KeyboardOverrideActive = true
}

// KeyboardThrottle is the throttle axis callback. Zero is ignored.
func (a *Arbiter) KeyboardThrottle(v float64) {
	if v == 0 {
		return
	}
	a.kb.throttle = &v
	a.state.KeyboardOverrideActive = true
}

// KeyboardBrake is the brake axis callback. Zero is ignored.
func (a *Arbiter) KeyboardBrake(v float64) {
	if v == 0 {
		return
	}
	a.kb.brake = &v
	a.state.KeyboardOverrideActive = true
}

// Tick arbitrates one tick and writes the result through the relay.
func (a *Arbiter) Tick(in TickInput) TickResult {
	var res TickResult
	check := func(err error) {
		if err != nil {
			res.Errors++
			a.logger.Error("vehicle action failed", "error", err)
		}
	}

	override := a.state.KeyboardOverrideActive
	engaged := a.relay.AutopilotEngaged()

	if a.kb.zeroSteer {
		check(a.relay.SetSteering(0))
	}

	switch {
	case override:
		res.Governing = SourceKeyboard
		res.Update = AxisUpdate{Source: SourceKeyboard}
		if a.kb.steering != nil {
			check(a.relay.SetSteering(*a.kb.steering))
		}
		if a.kb.throttle != nil {
			check(a.relay.SetThrottle(*a.kb.throttle))
		}
		if a.kb.brake != nil {
			check(a.relay.SetBrake(*a.kb.brake))
		}
	case in.Wheel != nil:
		upd, next := Decide(a.state, *in.Wheel, engaged, false)
		a.state = next
		res.Update = upd
		if upd.Source == SourceWheel {
			res.Governing = SourceWheel
			check(a.relay.SetSteering(upd.Steering))
			check(a.relay.SetThrottle(upd.Throttle))
			check(a.relay.SetBrake(upd.Brake))
		}
		res.Errors += applyButtons(a.relay, *in.Wheel, a.logger)
	}

	if res.Governing == SourceNone && engaged {
		res.Governing = SourceAutopilot
		if in.Autopilot != nil {
			check(a.relay.SetSteering(in.Autopilot.Steering))
			check(a.relay.SetThrottle(in.Autopilot.Throttle))
			check(a.relay.SetBrake(in.Autopilot.Brake))
		}
	}

	a.state.KeyboardOverrideActive = false
	a.kb = keyboardFrame{}
	return res
}
