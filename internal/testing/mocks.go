package testing

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/Alia5/egodrive/hmd"
	"github.com/Alia5/egodrive/internal/notify"
	"github.com/Alia5/egodrive/wheel"
)

// SpringCall records one PlaySpringForce call.
type SpringCall struct {
	Idx, Offset, Saturation, Coeff int
}

// FakeDriver is a scriptable wheel.Driver that records every call.
type FakeDriver struct {
	mu sync.Mutex

	Connected    bool
	InitErr      error
	UpdateOK     bool
	Sample       wheel.RawWheelSample
	DeviceName   string
	NameErr      error
	ForceCapable bool

	InitCalls      int
	Exclusive      bool
	ConnectedCalls int
	NameCalls      int
	SpringCalls    []SpringCall
	StopCalls      int
	ShutdownCalls  int
}

// NewFakeDriver returns a disconnected driver whose updates succeed.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{UpdateOK: true, Sample: wheel.ReleasedSample(), DeviceName: "Fake Wheel"}
}

// SetSample replaces the sample returned by State.
func (d *FakeDriver) SetSample(s wheel.RawWheelSample) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sample = s
}

// SetConnected plugs or unplugs the device.
func (d *FakeDriver) SetConnected(c bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Connected = c
}

func (d *FakeDriver) Name() string { return "fake" }

func (d *FakeDriver) Initialize(exclusive bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.InitCalls++
	d.Exclusive = exclusive
	return d.InitErr
}

func (d *FakeDriver) IsConnected(int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ConnectedCalls++
	return d.Connected
}

func (d *FakeDriver) Update() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.UpdateOK
}

func (d *FakeDriver) State(int) (wheel.RawWheelSample, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Sample, d.Connected
}

func (d *FakeDriver) FriendlyName(int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.NameCalls++
	return d.DeviceName, d.NameErr
}

func (d *FakeDriver) HasForceFeedback(int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ForceCapable
}

func (d *FakeDriver) PlaySpringForce(idx, off, sat, coeff int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.Connected {
		return errors.New("fake: no device")
	}
	d.SpringCalls = append(d.SpringCalls, SpringCall{idx, off, sat, coeff})
	return nil
}

func (d *FakeDriver) StopSpringForce(int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.StopCalls++
	return nil
}

func (d *FakeDriver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ShutdownCalls++
}

// FakePlatform is an hmd.Platform recording the side effects of a connection.
type FakePlatform struct {
	Connected bool
	Enabled   bool

	EnabledCalls int
	Origins      []hmd.TrackingOrigin
	Modes        []hmd.SpectatorMode
	Textures     []image.Image
}

func (p *FakePlatform) IsConnected() bool { return p.Connected }

func (p *FakePlatform) IsEnabled() bool {
	p.EnabledCalls++
	return p.Enabled
}

func (p *FakePlatform) DeviceName() string { return "Fake HMD" }

func (p *FakePlatform) SetTrackingOrigin(o hmd.TrackingOrigin) { p.Origins = append(p.Origins, o) }

func (p *FakePlatform) SetSpectatorScreenMode(m hmd.SpectatorMode) { p.Modes = append(p.Modes, m) }

func (p *FakePlatform) SetSpectatorScreenTexture(img image.Image) {
	p.Textures = append(p.Textures, img)
}

// Notifier records messages and never deduplicates.
type Notifier struct {
	Messages []notify.Message
}

func (n *Notifier) Show(m notify.Message) bool {
	n.Messages = append(n.Messages, m)
	return true
}

// LogRecorder is a slog.Handler that keeps every record.
type LogRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogRecorder returns a recorder and a logger writing to it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	r := &LogRecorder{}
	return r, slog.New(r)
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())
	return nil
}

func (r *LogRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Messages returns the messages logged at or above level.
func (r *LogRecorder) Messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Level >= level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// Count returns how often msg was logged.
func (r *LogRecorder) Count(msg string) int {
	n := 0
	for _, m := range r.Messages(slog.LevelDebug - 10) {
		if m == msg {
			n++
		}
	}
	return n
}
