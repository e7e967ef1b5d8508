package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/internal/autopilot"
	"github.com/Alia5/egodrive/internal/input"
	"github.com/Alia5/egodrive/internal/keyboard"
	egolog "github.com/Alia5/egodrive/internal/log"
	"github.com/Alia5/egodrive/internal/ndrt"
	"github.com/Alia5/egodrive/internal/recorder"
	"github.com/Alia5/egodrive/internal/session"
	"github.com/Alia5/egodrive/internal/speech"
	"github.com/Alia5/egodrive/internal/takeover"
	th "github.com/Alia5/egodrive/internal/testing"
	"github.com/Alia5/egodrive/vehicle"
)

const dt = 10 * time.Millisecond

type rig struct {
	s       *session.Session
	driver  *th.FakeDriver
	ego     *vehicle.EgoVehicle
	keys    chan keyboard.Event
	signals chan takeover.Signal
	now     time.Time
}

func newRig(t *testing.T, mutate func(*session.Config, *session.Deps)) *rig {
	t.Helper()
	r := &rig{
		driver:  th.NewFakeDriver(),
		ego:     vehicle.NewEgoVehicle(vehicle.DefaultInputConfig(), nil),
		keys:    make(chan keyboard.Event, 8),
		signals: make(chan takeover.Signal, 1),
		now:     time.Unix(1700000000, 0),
	}
	cfg := session.Config{TickRate: time.Millisecond, KeyHold: 50 * time.Millisecond, KeyRepeatDelay: 50 * time.Millisecond}
	deps := session.Deps{
		Driver:    r.driver,
		Vehicle:   r.ego,
		Autopilot: autopilot.NewCruise(10),
		Keys:      r.keys,
		Signals:   r.signals,
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	s, err := session.New(cfg, deps, egolog.Discard())
	require.NoError(t, err)
	r.s = s
	return r
}

func (r *rig) tick() *session.Snapshot {
	r.now = r.now.Add(dt)
	r.s.Tick(r.now, dt)
	return r.s.Snapshot()
}

func TestSessionWheelGoverns(t *testing.T) {
	r := newRig(t, nil)
	r.driver.Connected = true
	r.driver.ForceCapable = true

	snap := r.tick()
	assert.True(t, snap.Wheel.Connected())
	assert.Equal(t, "Fake Wheel", snap.Wheel.Name)
	assert.Equal(t, input.SourceNone, snap.Governing, "first reading only clears defaulting")
	assert.False(t, snap.PedalsDefaulting)
	assert.True(t, snap.SpringPlaying)

	snap = r.tick()
	assert.Equal(t, input.SourceWheel, snap.Governing)
	assert.Equal(t, uint64(2), snap.Tick)
	assert.Equal(t, "fake", snap.Driver)

	r.driver.SetConnected(false)
	snap = r.tick()
	assert.False(t, snap.Wheel.Connected())
	assert.False(t, snap.SpringPlaying)
	assert.Equal(t, input.SourceNone, snap.Governing)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "wheel-missing", snap.Messages[0].Key)
}

func TestSessionKeyboard(t *testing.T) {
	r := newRig(t, nil)
	r.driver.Connected = true
	r.tick()

	r.keys <- keyboard.Event{Kind: keyboard.KindAxis, Name: input.BindThrottle, Value: 1}
	r.keys <- keyboard.Event{Kind: keyboard.KindAction, Name: input.BindHoldHandbrake}
	snap := r.tick()
	assert.Equal(t, input.SourceKeyboard, snap.Governing)
	assert.InDelta(t, 1.0, snap.Inputs.Throttle, 1e-9)
	assert.True(t, snap.Inputs.HandbrakeHeld)

	for range 6 {
		snap = r.tick()
	}
	assert.Equal(t, input.SourceWheel, snap.Governing, "keys released after the hold time")
	assert.False(t, snap.Inputs.HandbrakeHeld)
}

func TestSessionKeyboardAutorepeat(t *testing.T) {
	// Default hold and repeat delay; the terminal sends the first repeat
	// late, then one every 30ms until the keys go up at 1000ms.
	r := newRig(t, func(cfg *session.Config, _ *session.Deps) {
		cfg.KeyHold = 0
		cfg.KeyRepeatDelay = 0
	})
	r.driver.Connected = true
	r.tick()
	start := r.now

	toggles := 0
	reversed := false
	for ms := 10; ms <= 1300; ms += 10 {
		if ms == 10 || (ms >= 500 && ms <= 1000 && (ms-500)%30 == 0) {
			r.keys <- keyboard.Event{Kind: keyboard.KindAction, Name: input.BindToggleReverse}
			r.keys <- keyboard.Event{Kind: keyboard.KindAxis, Name: input.BindSteer, Value: -1}
		}
		snap := r.tick()
		require.Equal(t, start.Add(time.Duration(ms)*time.Millisecond), r.now)
		if snap.Inputs.ReverseToggled != reversed {
			toggles++
			reversed = snap.Inputs.ReverseToggled
		}
		if ms <= 1000 {
			assert.Equal(t, input.SourceKeyboard, snap.Governing, "steer held at %dms", ms)
		}
	}

	assert.Equal(t, 1, toggles, "one key press toggles reverse once")
	assert.True(t, reversed)
	assert.NotEqual(t, input.SourceKeyboard, r.s.Snapshot().Governing, "keys released after the last repeat")
}

func TestSessionTakeoverHandshake(t *testing.T) {
	r := newRig(t, nil)
	r.driver.Connected = true
	r.ego.SetAutopilot(true)

	snap := r.tick()
	assert.Equal(t, input.SourceAutopilot, snap.Governing)
	assert.Greater(t, snap.Inputs.Throttle, 0.0, "cruise accelerates towards its target")

	r.signals <- takeover.SignalTORIssued
	snap = r.tick()
	assert.Equal(t, takeover.PhaseAlert, snap.Takeover)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "tor", snap.Messages[0].Key)

	r.tick()
	r.keys <- keyboard.Event{Kind: keyboard.KindAxis, Name: input.BindSteer, Value: -1}
	snap = r.tick()
	assert.Equal(t, input.SourceKeyboard, snap.Governing)
	assert.Equal(t, takeover.PhaseManual, snap.Takeover)
	assert.False(t, snap.AutopilotEngaged)
	assert.Equal(t, 2*dt, snap.LastReaction)
	assert.Empty(t, snap.Messages)

	require.NoError(t, r.s.ResumeAIControl())
	snap = r.tick()
	assert.Equal(t, takeover.PhaseAutomated, snap.Takeover)
	assert.True(t, snap.AutopilotEngaged)
}

func TestSessionReadingTask(t *testing.T) {
	signalPath := filepath.Join(t.TempDir(), "tor.txt")
	task, err := ndrt.New("two words", 6000)
	require.NoError(t, err)
	speaker := speech.NewSpeaker(speech.Null{}, 1, egolog.Discard())

	file := takeover.File{Path: signalPath}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	link := takeover.Watch(ctx, file, 5*time.Millisecond, egolog.Discard())

	r := newRig(t, func(cfg *session.Config, d *session.Deps) {
		cfg.NDRTSpeak = true
		cfg.NDRTWPM = 6000
		d.Task = task
		d.Speaker = speaker
		d.Signal = link
	})
	signalIs := func(want takeover.Signal) func() bool {
		return func() bool {
			sig, err := file.Read()
			return err == nil && sig == want
		}
	}

	require.NoError(t, r.s.StartNDRT())
	require.Eventually(t, signalIs(takeover.SignalNDRTStarted), 2*time.Second, time.Millisecond)
	assert.False(t, speaker.Say(speech.Utterance{Text: "x"}), "task text is queued")

	snap := r.tick()
	assert.True(t, snap.NDRT.Started)
	assert.Equal(t, 2, snap.NDRT.Words)
	assert.False(t, snap.NDRT.Complete)

	snap = r.tick()
	assert.True(t, snap.NDRT.Complete)
	require.Eventually(t, signalIs(takeover.SignalNDRTComplete), 2*time.Second, time.Millisecond)
}

func TestSessionWithoutTask(t *testing.T) {
	r := newRig(t, nil)
	assert.ErrorIs(t, r.s.StartNDRT(), session.ErrNoTask)
}

func TestSessionRun(t *testing.T) {
	r := newRig(t, nil)
	r.driver.Connected = true
	r.driver.ForceCapable = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.s.Run(ctx) }()

	require.NoError(t, r.s.Do(ctx, func(s *session.Session) error { return s.SetAutopilot(true) }))
	require.Eventually(t, func() bool { return r.s.Snapshot().AutopilotEngaged }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}
	<-r.s.Stopped()
	assert.Equal(t, 1, r.driver.ShutdownCalls)

	err := r.s.Do(context.Background(), func(*session.Session) error { return nil })
	assert.ErrorIs(t, err, session.ErrStopped)
}

func TestSessionQuitKey(t *testing.T) {
	r := newRig(t, nil)
	r.keys <- keyboard.Event{Kind: keyboard.KindCommand, Name: keyboard.CommandQuit}

	done := make(chan error, 1)
	go func() { done <- r.s.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("quit key did not stop the session")
	}
}

func TestSessionRecorder(t *testing.T) {
	db, err := recorder.Open(filepath.Join(t.TempDir(), "rec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Close(db) })
	rec, err := recorder.New(db, recorder.Config{BatchSize: 10, FlushInterval: time.Hour}, recorder.SessionRecord{Driver: "fake"}, egolog.Discard())
	require.NoError(t, err)

	r := newRig(t, func(_ *session.Config, d *session.Deps) { d.Recorder = rec })
	r.driver.Connected = true
	for range 5 {
		r.tick()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))

	n, err := recorder.TickCount(db, rec.SessionID())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	events, err := recorder.Events(db, rec.SessionID())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "wheel-available", events[0].Kind)
	assert.Equal(t, "Fake Wheel", events[0].Detail)
}
