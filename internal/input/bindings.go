package input

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Alia5/egodrive/vehicle"
)

// ErrUnknownBinding is returned for an action or axis nothing is bound to.
var ErrUnknownBinding = errors.New("unknown binding")

// Binding names.
const (
	BindSteer           = "Steer"
	BindThrottle        = "Throttle"
	BindBrake           = "Brake"
	BindToggleReverse   = "ToggleReverse"
	BindTurnSignalLeft  = "TurnSignalLeft"
	BindTurnSignalRight = "TurnSignalRight"
	BindHoldHandbrake   = "HoldHandbrake"
	BindCameraFwd       = "CameraFwd"
	BindCameraBack      = "CameraBack"
	BindCameraLeft      = "CameraLeft"
	BindCameraRight     = "CameraRight"
	BindCameraUp        = "CameraUp"
	BindCameraDown      = "CameraDown"
	BindMouseLookUp     = "MouseLookUp"
	BindMouseTurn       = "MouseTurn"
)

type action struct {
	press   func() error
	release func() error
}

// Bindings maps named keyboard and mouse inputs onto the arbiter and the
// relay. It must only be used from the tick loop.
type Bindings struct {
	axes    map[string]func(float64) error
	actions map[string]action
	logger  *slog.Logger
}

// NewBindings binds the standard actions and axes. Axes that drive the
// continuous controls go through the arbiter; everything else goes straight
// to the relay.
func NewBindings(a *Arbiter, r *vehicle.Relay, logger *slog.Logger) *Bindings {
	noop := func() error { return nil }
	arbiterAxis := func(fn func(float64)) func(float64) error {
		return func(v float64) error {
			fn(v)
			return nil
		}
	}
	return &Bindings{
		axes: map[string]func(float64) error{
			BindSteer:       arbiterAxis(a.KeyboardSteer),
			BindThrottle:    arbiterAxis(a.KeyboardThrottle),
			BindBrake:       arbiterAxis(a.KeyboardBrake),
			BindMouseLookUp: r.MouseLookUp,
			BindMouseTurn:   r.MouseTurn,
		},
		actions: map[string]action{
			BindToggleReverse:   {r.PressReverse, r.ReleaseReverse},
			BindTurnSignalLeft:  {r.PressTurnSignalLeft, r.ReleaseTurnSignalLeft},
			BindTurnSignalRight: {r.PressTurnSignalRight, r.ReleaseTurnSignalRight},
			BindHoldHandbrake:   {r.PressHandbrake, r.ReleaseHandbrake},
			BindCameraFwd:       {r.CameraFwd, noop},
			BindCameraBack:      {r.CameraBack, noop},
			BindCameraLeft:      {r.CameraLeft, noop},
			BindCameraRight:     {r.CameraRight, noop},
			BindCameraUp:        {r.CameraUp, noop},
			BindCameraDown:      {r.CameraDown, noop},
		},
		logger: logger.With("component", "bindings"),
	}
}

// Axis feeds value to the named axis.
func (b *Bindings) Axis(name string, value float64) error {
	fn, ok := b.axes[name]
	if !ok {
		return fmt.Errorf("axis %q: %w", name, ErrUnknownBinding)
	}
	return b.report(name, fn(value))
}

// Press triggers the named action.
func (b *Bindings) Press(name string) error {
	act, ok := b.actions[name]
	if !ok {
		return fmt.Errorf("action %q: %w", name, ErrUnknownBinding)
	}
	return b.report(name, act.press())
}

// Release releases the named action.
func (b *Bindings) Release(name string) error {
	act, ok := b.actions[name]
	if !ok {
		return fmt.Errorf("action %q: %w", name, ErrUnknownBinding)
	}
	return b.report(name, act.release())
}

func (b *Bindings) report(name string, err error) error {
	if err != nil {
		b.logger.Error("input binding failed", "binding", name, "error", err)
	}
	return err
}

// Names returns the sorted axis and action names.
func (b *Bindings) Names() (axes, actions []string) {
	for n := range b.axes {
		axes = append(axes, n)
	}
	for n := range b.actions {
		actions = append(actions, n)
	}
	sort.Strings(axes)
	sort.Strings(actions)
	return axes, actions
}
