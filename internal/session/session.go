// Package session runs the drive loop: every tick it checks the devices,
// polls the wheel, arbitrates between the control sources and actuates the
// ego vehicle. Everything else talks to the loop by message passing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alia5/egodrive/hmd"
	"github.com/Alia5/egodrive/internal/autopilot"
	"github.com/Alia5/egodrive/internal/input"
	"github.com/Alia5/egodrive/internal/keyboard"
	egolog "github.com/Alia5/egodrive/internal/log"
	"github.com/Alia5/egodrive/internal/ndrt"
	"github.com/Alia5/egodrive/internal/notify"
	"github.com/Alia5/egodrive/internal/recorder"
	"github.com/Alia5/egodrive/internal/speech"
	"github.com/Alia5/egodrive/internal/takeover"
	"github.com/Alia5/egodrive/vehicle"
	"github.com/Alia5/egodrive/wheel"
)

var (
	// ErrStopped is returned by Do once the loop has exited.
	ErrStopped = errors.New("session stopped")
	// ErrNoTask is returned when the reading task is started without a text.
	ErrNoTask = errors.New("no reading task loaded")
)

// Config tunes the loop.
type Config struct {
	TickRate   time.Duration
	Monitor    input.MonitorConfig
	LogUpdates bool
	KeyHold    time.Duration
	// KeyRepeatDelay is how long a key counts as held before its first
	// autorepeat arrives.
	KeyRepeatDelay time.Duration
	NDRTWPM        int
	NDRTSpeak      bool
}

// Deps are the collaborators of a session. Fields marked optional may be nil.
type Deps struct {
	Driver    wheel.Driver
	HMD       hmd.Platform
	Vehicle   *vehicle.EgoVehicle
	Sounds    vehicle.Sounds
	Board     *notify.Board
	Autopilot autopilot.Controller
	RawLog    egolog.RawLogger

	// optional
	Task     *ndrt.Task
	Speaker  *speech.Speaker
	Signal   takeover.Sender
	Signals  <-chan takeover.Signal
	Keys     <-chan keyboard.Event
	Recorder *recorder.Recorder
}

type request struct {
	fn   func(*Session) error
	done chan error
}

// Session owns the tick loop state. Apart from Do, Snapshot and Stopped its
// methods must only be called on the loop, i.e. from Tick or a Do callback.
type Session struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	relay    *vehicle.Relay
	monitor  *input.Monitor
	poller   *input.Poller
	arbiter  *input.Arbiter
	ff       *input.ForceFeedback
	bindings *input.Bindings
	takeover *takeover.Controller
	keys     *keyboard.State
	metrics  *metrics

	requests chan request
	stopped  chan struct{}
	snap     atomic.Pointer[Snapshot]

	tick      uint64
	governing input.ControlSource
	reaction  time.Duration
	quit      bool
}

// New wires a session. It does not start the loop.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Session, error) {
	if deps.Driver == nil {
		deps.Driver = wheel.NewNull()
	}
	if deps.HMD == nil {
		deps.HMD = hmd.Null{}
	}
	if deps.Board == nil {
		deps.Board = notify.NewBoard()
	}
	if deps.RawLog == nil {
		deps.RawLog = egolog.NewRaw(nil)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = time.Second / 90
	}
	if cfg.KeyHold <= 0 {
		cfg.KeyHold = 150 * time.Millisecond
	}
	if cfg.KeyRepeatDelay <= 0 {
		cfg.KeyRepeatDelay = 700 * time.Millisecond
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	logger = logger.With("component", "session")
	relay := vehicle.NewRelay(nil)
	if deps.Vehicle != nil {
		relay.Bind(deps.Vehicle)
	}
	idx := cfg.Monitor.DeviceIdx
	arbiter := input.NewArbiter(relay, logger)

	s := &Session{
		cfg:      cfg,
		deps:     deps,
		logger:   logger,
		relay:    relay,
		monitor:  input.NewMonitor(cfg.Monitor, deps.HMD, deps.Driver, deps.Board, logger),
		poller:   input.NewPoller(input.PollerConfig{DeviceIdx: idx, LogUpdates: cfg.LogUpdates}, deps.Driver, deps.RawLog, logger),
		arbiter:  arbiter,
		ff:       input.NewForceFeedback(deps.Driver, idx, logger),
		bindings: input.NewBindings(arbiter, relay, logger),
		takeover: takeover.NewController(deps.Signal, relay, deps.Sounds, deps.Board, logger),
		keys:     keyboard.NewState(cfg.KeyHold, cfg.KeyRepeatDelay),
		metrics:  m,
		requests: make(chan request, 16),
		stopped:  make(chan struct{}),
	}
	s.snap.Store(&Snapshot{Driver: deps.Driver.Name(), Governing: input.SourceNone})
	return s, nil
}

// Snapshot returns the state published by the last tick. Safe for concurrent use.
func (s *Session) Snapshot() *Snapshot { return s.snap.Load() }

// Stopped is closed when Run has returned.
func (s *Session) Stopped() <-chan struct{} { return s.stopped }

// Relay returns the relay all sources write through.
func (s *Session) Relay() *vehicle.Relay { return s.relay }

// Vehicle returns the ego vehicle, or nil. Only use it on the loop.
func (s *Session) Vehicle() *vehicle.EgoVehicle { return s.deps.Vehicle }

// Board returns the on-screen message board.
func (s *Session) Board() *notify.Board { return s.deps.Board }

// Speaker returns the text-to-speech queue, or nil.
func (s *Session) Speaker() *speech.Speaker { return s.deps.Speaker }

// Autopilot returns the autopilot controller, or nil.
func (s *Session) Autopilot() autopilot.Controller { return s.deps.Autopilot }

// Do runs fn on the loop and waits for its result.
func (s *Session) Do(ctx context.Context, fn func(*Session) error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
}

// Run drives Tick at the configured rate until ctx ends or a quit command
// arrives, then tears down the wheel.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.ff.Teardown(true)

	s.logger.Info("session started", "tick_rate", s.cfg.TickRate, "driver", s.deps.Driver.Name())
	ticker := time.NewTicker(s.cfg.TickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopped", "ticks", s.tick)
			return nil
		case now := <-ticker.C:
			s.Tick(now, now.Sub(last))
			last = now
			if s.quit {
				s.logger.Info("session quit", "ticks", s.tick)
				return nil
			}
		}
	}
}

// Quit ends Run after the current tick.
func (s *Session) Quit() { s.quit = true }

// Tick runs one iteration of the loop.
func (s *Session) Tick(now time.Time, dt time.Duration) {
	s.tick++
	s.drainRequests()
	s.drainSignals(now)
	s.drainKeys(now)

	prevHMD, prevWheel := s.monitor.HMD(), s.monitor.Wheel()
	hmdConn := s.monitor.PollHMD()
	wheelConn := s.monitor.PollWheel()
	s.deviceEvent(now, prevHMD, hmdConn)
	s.deviceEvent(now, prevWheel, wheelConn)
	if prevWheel.Connected() && !wheelConn.Connected() {
		s.poller.Reset()
	}

	var in input.TickInput
	if sample, err := s.poller.Poll(wheelConn); err == nil {
		n := wheel.Normalize(sample)
		in.Wheel = &n
	} else if !errors.Is(err, input.ErrDeviceUnavailable) {
		s.logger.Debug("wheel poll failed", "error", err)
	}

	s.applyKeys(now)

	if s.relay.AutopilotEngaged() && s.deps.Autopilot != nil {
		speed := 0.0
		if s.deps.Vehicle != nil {
			speed = s.deps.Vehicle.Speed()
		}
		if cmd, ok := s.deps.Autopilot.Command(autopilot.Status{Speed: speed}); ok {
			in.Autopilot = &cmd
		}
	}

	res := s.arbiter.Tick(in)
	if err := s.ff.Update(wheelConn.Connected(), wheelConn.ForceFeedback); err != nil {
		s.logger.Warn("force feedback update failed", "error", err)
	}

	if reaction, ok := s.takeover.ObserveHuman(res.Governing.Human(), now); ok {
		s.reaction = reaction
		s.metrics.reactions.Record(context.Background(), reaction.Seconds())
		s.event(now, "takeover", fmt.Sprintf("%s after %s", res.Governing, reaction))
	}

	if t := s.deps.Task; t != nil && t.Tick(dt) {
		s.logger.Info("reading task complete")
		s.takeover.NDRTComplete()
		s.event(now, "ndrt-complete", "")
	}

	if s.deps.Vehicle != nil {
		s.deps.Vehicle.Tick(dt)
	}

	s.observe(now, res)
	s.publish(now, res)
}

func (s *Session) drainRequests() {
	for n := len(s.requests); n > 0; n-- {
		req := <-s.requests
		req.done <- req.fn(s)
	}
}

func (s *Session) drainSignals(now time.Time) {
	if s.deps.Signals == nil {
		return
	}
	for {
		select {
		case sig, ok := <-s.deps.Signals:
			if !ok {
				s.deps.Signals = nil
				return
			}
			if sig == takeover.SignalTORIssued && !s.takeover.AlertActive() {
				s.event(now, "tor", "")
			}
			s.takeover.HandleSignal(sig, now)
		default:
			return
		}
	}
}

func (s *Session) drainKeys(now time.Time) {
	if s.deps.Keys == nil {
		return
	}
	for {
		select {
		case ev, ok := <-s.deps.Keys:
			if !ok {
				s.deps.Keys = nil
				return
			}
			s.handleKey(ev, now)
		default:
			return
		}
	}
}

func (s *Session) handleKey(ev keyboard.Event, now time.Time) {
	switch ev.Kind {
	case keyboard.KindAxis:
		s.keys.Axis(ev.Name, ev.Value, now)
	case keyboard.KindAction:
		if s.keys.Press(ev.Name, now) {
			_ = s.bindings.Press(ev.Name)
		}
	case keyboard.KindCommand:
		switch ev.Name {
		case keyboard.CommandResume:
			if err := s.ResumeAIControl(); err != nil {
				s.logger.Error("resume autopilot failed", "error", err)
			}
		case keyboard.CommandQuit:
			s.Quit()
		}
	}
}

// applyKeys feeds held keyboard axes to the arbiter and releases actions
// whose keys are up.
func (s *Session) applyKeys(now time.Time) {
	for name, v := range s.keys.AxisValues(now) {
		_ = s.bindings.Axis(name, v)
	}
	for _, name := range s.keys.Released(now) {
		_ = s.bindings.Release(name)
	}
}

// StartNDRT starts the reading task, signals the scenario runner and reads
// the text aloud.
func (s *Session) StartNDRT() error {
	t := s.deps.Task
	if t == nil {
		return ErrNoTask
	}
	t.Start()
	s.takeover.NDRTStarted()
	if s.cfg.NDRTSpeak && s.deps.Speaker != nil {
		s.deps.Speaker.Say(speech.Utterance{Text: t.Text(), WPM: s.cfg.NDRTWPM})
	}
	s.event(time.Now(), "ndrt-start", fmt.Sprintf("%d words", t.Words()))
	s.logger.Info("reading task started", "words", t.Words(), "duration", t.Duration())
	return nil
}

// IssueTOR raises a take-over request as if the scenario runner had sent one.
func (s *Session) IssueTOR(now time.Time) {
	if !s.takeover.AlertActive() {
		s.event(now, "tor", "manual")
	}
	s.takeover.HandleSignal(takeover.SignalTORIssued, now)
}

// ResumeAIControl hands control back to the autopilot.
func (s *Session) ResumeAIControl() error {
	if err := s.takeover.ResumeAIControl(); err != nil {
		return err
	}
	s.event(time.Now(), "resume", "")
	return nil
}

// SetAutopilot engages or disengages the autopilot.
func (s *Session) SetAutopilot(engaged bool) error {
	if err := s.relay.SetAutopilot(engaged); err != nil {
		return err
	}
	s.event(time.Now(), "autopilot", fmt.Sprintf("engaged=%t", engaged))
	return nil
}

// Bindings returns the input bindings. Only use it on the loop.
func (s *Session) Bindings() *input.Bindings { return s.bindings }

// Phase returns the take-over phase. Only use it on the loop.
func (s *Session) Phase() takeover.Phase { return s.takeover.Phase() }

func (s *Session) deviceEvent(now time.Time, prev, cur input.DeviceConnection) {
	if prev.State == cur.State {
		return
	}
	s.metrics.devices.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("device", cur.Kind.String()),
		attribute.String("state", cur.State.String()),
	))
	s.event(now, cur.Kind.String()+"-"+cur.State.String(), cur.Name)
}

func (s *Session) event(now time.Time, kind, detail string) {
	if s.deps.Recorder == nil {
		return
	}
	s.deps.Recorder.RecordEvent(recorder.EventRecord{Tick: s.tick, Time: now, Kind: kind, Detail: detail})
}

func (s *Session) observe(now time.Time, res input.TickResult) {
	ctx := context.Background()
	src := attribute.String("source", res.Governing.String())
	s.metrics.ticks.Add(ctx, 1, metric.WithAttributes(src))
	if res.Errors > 0 {
		s.metrics.errors.Add(ctx, int64(res.Errors))
	}
	if res.Governing != s.governing {
		s.metrics.handoffs.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", s.governing.String()), src))
		s.logger.Debug("control handoff", "from", s.governing, "to", res.Governing)
		s.governing = res.Governing
	}

	if s.deps.Recorder == nil {
		return
	}
	rec := recorder.TickRecord{
		Tick:       s.tick,
		Time:       now,
		Governing:  res.Governing.String(),
		Defaulting: s.arbiter.State().PedalsDefaulting,
		Errors:     res.Errors,
	}
	if v := s.deps.Vehicle; v != nil {
		in := v.Inputs()
		rec.Steering, rec.Throttle, rec.Brake = in.Steering, in.Throttle, in.Brake
		rec.Speed = v.Speed()
	}
	s.deps.Recorder.RecordTick(rec)
}

func (s *Session) publish(now time.Time, res input.TickResult) {
	snap := &Snapshot{
		Tick:             s.tick,
		Time:             now,
		Driver:           s.deps.Driver.Name(),
		Governing:        res.Governing,
		AutopilotEngaged: s.relay.AutopilotEngaged(),
		PedalsDefaulting: s.arbiter.State().PedalsDefaulting,
		HMD:              s.monitor.HMD(),
		Wheel:            s.monitor.Wheel(),
		SpringPlaying:    s.ff.Playing(),
		Takeover:         s.takeover.Phase(),
		LastReaction:     s.reaction,
		Messages:         s.deps.Board.Active(),
	}
	if s.deps.Autopilot != nil {
		snap.AutopilotMode = s.deps.Autopilot.Name()
	}
	if v := s.deps.Vehicle; v != nil {
		snap.Inputs = v.Inputs()
		snap.Camera = v.Camera()
		snap.Speed = v.Speed()
	}
	if t := s.deps.Task; t != nil {
		snap.NDRT = NDRTStatus{
			Loaded:   true,
			Started:  t.Started(),
			Complete: t.Complete(),
			Word:     t.Word(),
			Words:    t.Words(),
		}
	}
	s.snap.Store(snap)
}
