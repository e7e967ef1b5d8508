package input

import (
	"fmt"
	"log/slog"
	"time"

	egolog "github.com/Alia5/egodrive/internal/log"
	"github.com/Alia5/egodrive/wheel"
)

// PollerConfig configures a Poller.
type PollerConfig struct {
	DeviceIdx int
	// LogUpdates logs every channel change between consecutive samples.
	LogUpdates bool
}

// Poller reads raw samples from the wheel driver.
type Poller struct {
	cfg    PollerConfig
	driver wheel.Driver
	logger *slog.Logger
	raw    egolog.RawLogger
	start  time.Time
	now    func() time.Time

	// prev is the last good sample. It seeds the diff logger and stands in
	// for the current sample when the driver fails to update.
	prev *wheel.RawWheelSample
	tag  string
}

// NewPoller creates a poller. raw may be nil.
func NewPoller(cfg PollerConfig, driver wheel.Driver, raw egolog.RawLogger, logger *slog.Logger) *Poller {
	if raw == nil {
		raw = egolog.NewRaw(nil)
	}
	return &Poller{
		cfg:    cfg,
		driver: driver,
		logger: logger.With("component", "poller"),
		raw:    raw,
		start:  time.Now(),
		now:    time.Now,
		tag:    fmt.Sprintf("wheel[%d]", cfg.DeviceIdx),
	}
}

// Poll reads the current sample of a connected wheel.
//
// It returns ErrDeviceUnavailable when conn is not available. When the driver
// fails to update, the previous sample is returned; without one the error is
// ErrDriverUpdateFailed.
func (p *Poller) Poll(conn DeviceConnection) (wheel.RawWheelSample, error) {
	if !conn.Connected() {
		return wheel.RawWheelSample{}, ErrDeviceUnavailable
	}
	if !p.driver.Update() {
		p.logger.Warn("wheel driver update failed, keeping previous sample", "driver", p.driver.Name())
		if p.prev == nil {
			return wheel.RawWheelSample{}, ErrDriverUpdateFailed
		}
		return *p.prev, nil
	}
	s, ok := p.driver.State(p.cfg.DeviceIdx)
	if !ok {
		return wheel.RawWheelSample{}, fmt.Errorf("wheel %d: %w", p.cfg.DeviceIdx, ErrDeviceUnavailable)
	}

	if b, err := s.MarshalBinary(); err == nil {
		p.raw.Log(p.tag, b)
	}
	if p.cfg.LogUpdates && p.prev != nil {
		logChanges(p.logger, p.now().Sub(p.start).Seconds(), Diff(*p.prev, s))
	}
	p.prev = &s
	return s, nil
}

// Reset forgets the previous sample, e.g. after the wheel was unplugged.
func (p *Poller) Reset() { p.prev = nil }
