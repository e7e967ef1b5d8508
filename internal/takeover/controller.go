package takeover

import (
	"log/slog"
	"time"

	"github.com/Alia5/egodrive/internal/notify"
	"github.com/Alia5/egodrive/vehicle"
)

// Config configures the handshake.
type Config struct {
	SignalFile   string        `help:"File shared with the scenario runner; empty disables take-over requests" default:"" env:"EGODRIVE_TAKEOVER_SIGNAL_FILE"`
	PollInterval time.Duration `help:"How often the signal file is read" default:"100ms" env:"EGODRIVE_TAKEOVER_POLL_INTERVAL"`
}

const (
	alertKey      = "tor"
	alertText     = "TAKE OVER"
	alertDuration = time.Hour
)

// Phase of the take-over handshake.
type Phase int

const (
	PhaseAutomated Phase = iota
	PhaseAlert
	PhaseManual
)

func (p Phase) String() string {
	switch p {
	case PhaseAlert:
		return "alert"
	case PhaseManual:
		return "manual"
	default:
		return "automated"
	}
}

// Board is where the alert is shown.
type Board interface {
	Show(notify.Message) bool
	Dismiss(key string)
}

// Sender delivers a signal to the scenario runner without blocking.
type Sender interface {
	Send(Signal)
}

// Controller runs the vehicle side of the handshake. It is owned by the tick
// loop.
type Controller struct {
	link   Sender
	relay  *vehicle.Relay
	sounds vehicle.Sounds
	board  Board
	logger *slog.Logger

	phase     Phase
	alertedAt time.Time
}

// NewController returns a controller. link may be nil, in which case nothing
// is sent.
func NewController(link Sender, relay *vehicle.Relay, sounds vehicle.Sounds, board Board, logger *slog.Logger) *Controller {
	if sounds == nil {
		sounds = vehicle.SoundFunc(func(vehicle.Sound) {})
	}
	return &Controller{
		link:   link,
		relay:  relay,
		sounds: sounds,
		board:  board,
		logger: logger.With("component", "takeover"),
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// AlertActive reports whether the take-over alert is showing.
func (c *Controller) AlertActive() bool { return c.phase == PhaseAlert }

func (c *Controller) send(s Signal) {
	if c.link == nil {
		return
	}
	c.link.Send(s)
	c.logger.Debug("queued takeover signal", "signal", s)
}

// NDRTStarted tells the scenario runner that the reading task began.
func (c *Controller) NDRTStarted() { c.send(SignalNDRTStarted) }

// NDRTComplete tells the scenario runner that the reading task ended.
func (c *Controller) NDRTComplete() { c.send(SignalNDRTComplete) }

// HandleSignal reacts to a value read from the signal file.
func (c *Controller) HandleSignal(s Signal, now time.Time) {
	if s != SignalTORIssued || c.phase == PhaseAlert {
		return
	}
	c.phase = PhaseAlert
	c.alertedAt = now
	c.sounds.Play(vehicle.SoundTORAlert)
	if c.board != nil {
		c.board.Show(notify.Message{Key: alertKey, Text: alertText, Duration: alertDuration, Color: notify.Red})
	}
	c.logger.Warn("take-over request issued")
}

// ObserveHuman is called every tick with whether a human governed the axes.
// The first human input during an alert ends it and disengages the
// autopilot. It returns the reaction time when that happens.
func (c *Controller) ObserveHuman(human bool, now time.Time) (time.Duration, bool) {
	if !human || c.phase != PhaseAlert {
		return 0, false
	}
	c.phase = PhaseManual
	if c.board != nil {
		c.board.Dismiss(alertKey)
	}
	if err := c.relay.SetAutopilot(false); err != nil {
		c.logger.Error("failed to disengage autopilot", "error", err)
	}
	reaction := now.Sub(c.alertedAt)
	c.logger.Info("driver took over", "reaction", reaction)
	return reaction, true
}

// ResumeAIControl hands the vehicle back to the autopilot.
func (c *Controller) ResumeAIControl() error {
	if c.phase == PhaseAlert && c.board != nil {
		c.board.Dismiss(alertKey)
	}
	if err := c.relay.SetAutopilot(true); err != nil {
		return err
	}
	c.phase = PhaseAutomated
	c.logger.Info("autopilot resumed")
	return nil
}
