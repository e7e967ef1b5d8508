// Package autopilot provides the automated control sources that compete with
// the human driver in the arbiter.
package autopilot

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/egodrive/internal/input"
)

// Status is what a controller may look at when producing a command.
type Status struct {
	Speed float64 // m/s, negative when reversing
}

// Controller produces axis commands while the autopilot is engaged.
type Controller interface {
	Name() string
	// Command returns the command for this tick, or false when the controller
	// has nothing to say.
	Command(Status) (input.AxisCommand, bool)
}

// Config selects and tunes the controller.
type Config struct {
	Mode          string        `help:"Autopilot controller (cruise, remote)" default:"cruise" enum:"cruise,remote" env:"EGODRIVE_AUTOPILOT_MODE"`
	TargetSpeed   float64       `help:"Cruise target speed in m/s" default:"13.9" env:"EGODRIVE_AUTOPILOT_TARGET_SPEED"`
	Engaged       bool          `help:"Engage the autopilot at session start" default:"false" env:"EGODRIVE_AUTOPILOT_ENGAGED"`
	RemoteTimeout time.Duration `help:"Remote commands older than this are ignored" default:"500ms" env:"EGODRIVE_AUTOPILOT_REMOTE_TIMEOUT"`
}

// New returns the controller named by cfg.Mode.
func New(cfg Config) (Controller, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", "cruise":
		return NewCruise(cfg.TargetSpeed), nil
	case "remote":
		return NewRemote(cfg.RemoteTimeout), nil
	default:
		return nil, fmt.Errorf("unknown autopilot mode %q", cfg.Mode)
	}
}

// Cruise holds a target speed with the wheel centred.
type Cruise struct {
	Target float64
	// Gain converts m/s of speed error into pedal travel.
	Gain float64
}

// NewCruise returns a cruise controller for target m/s.
func NewCruise(target float64) *Cruise { return &Cruise{Target: target, Gain: 0.25} }

func (c *Cruise) Name() string { return "cruise" }

func (c *Cruise) Command(st Status) (input.AxisCommand, bool) {
	diff := c.Target - st.Speed
	cmd := input.AxisCommand{}
	switch {
	case diff > 0:
		cmd.Throttle = math.Min(1, diff*c.Gain)
	case diff < -1:
		cmd.Brake = math.Min(1, -diff*c.Gain)
	}
	return cmd, true
}

// Remote forwards commands pushed by an external client. A command is used
// until it is older than the timeout.
type Remote struct {
	mu      sync.Mutex
	cmd     input.AxisCommand
	at      time.Time
	timeout time.Duration
	now     func() time.Time
}

// NewRemote returns a remote controller.
func NewRemote(timeout time.Duration) *Remote {
	return &Remote{timeout: timeout, now: time.Now}
}

func (r *Remote) Name() string { return "remote" }

// Set stores the latest command. Safe for concurrent use.
func (r *Remote) Set(cmd input.AxisCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmd = cmd
	r.at = r.now()
}

func (r *Remote) Command(Status) (input.AxisCommand, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.at.IsZero() || r.now().Sub(r.at) > r.timeout {
		return input.AxisCommand{}, false
	}
	return r.cmd, true
}
