package input

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/egodrive/wheel"
)

// Centring spring parameters, in percent.
const (
	SpringOffset     = 0
	SpringSaturation = 30
	SpringCoeff      = 100
)

// ForceFeedback drives the wheel's centring spring.
type ForceFeedback struct {
	driver wheel.Driver
	idx    int
	logger *slog.Logger

	playing bool
}

// NewForceFeedback returns a controller for wheel idx of driver.
func NewForceFeedback(driver wheel.Driver, idx int, logger *slog.Logger) *ForceFeedback {
	return &ForceFeedback{driver: driver, idx: idx, logger: logger.With("component", "forcefeedback")}
}

// Playing reports whether the spring was last started.
func (f *ForceFeedback) Playing() bool { return f.playing }

// Update plays the spring while the wheel is connected and capable and stops
// it otherwise. It is called every tick.
func (f *ForceFeedback) Update(connected, capable bool) error {
	if connected && capable {
		if err := f.driver.PlaySpringForce(f.idx, SpringOffset, SpringSaturation, SpringCoeff); err != nil {
			return fmt.Errorf("play spring force: %w", err)
		}
		if !f.playing {
			f.logger.Debug("spring force started", "index", f.idx)
		}
		f.playing = true
		return nil
	}
	if err := f.driver.StopSpringForce(f.idx); err != nil {
		return fmt.Errorf("stop spring force: %w", err)
	}
	if f.playing {
		f.logger.Debug("spring force stopped", "index", f.idx)
	}
	f.playing = false
	return nil
}

// Teardown stops the force. The driver is shut down only at the end of the
// session; a vehicle respawn keeps it open.
func (f *ForceFeedback) Teardown(endOfSession bool) {
	if err := f.driver.StopSpringForce(f.idx); err != nil {
		f.logger.Warn("failed to stop spring force", "error", err)
	}
	f.playing = false
	if endOfSession {
		f.driver.Shutdown()
	}
}
