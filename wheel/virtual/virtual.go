// Package virtual implements a wheel driver fed over the control API.
//
// A client attaches to the stream "wheel/{index}", pushes RawWheelSample frames
// and receives ForceState frames whenever the spring effect changes. The wheel
// is connected for as long as the stream is open.
package virtual

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Alia5/egodrive/wheel"
)

// MaxDevices bounds the device index accepted by the driver.
const MaxDevices = 8

// ErrAlreadyAttached is returned when a second client attaches to a busy index.
var ErrAlreadyAttached = errors.New("virtual wheel already attached")

func init() {
	wheel.RegisterDriver("virtual", registration{})
}

type registration struct{}

func (registration) CreateDriver(logger *slog.Logger) wheel.Driver { return New(logger) }
func (registration) Available() bool { return true }

type device struct {
	attached bool
	// pending starts as the defaulting sample, like real drivers report
	// before the first touch.
	pending wheel.RawWheelSample
	state   wheel.RawWheelSample
	force   wheel.ForceState
	onForce func(wheel.ForceState)
}

// Driver is a wheel.Driver backed by network clients.
type Driver struct {
	mu      sync.Mutex
	devices [MaxDevices]device
	logger  *slog.Logger
}

// New returns a driver with no attached devices.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{logger: logger.With("driver", "virtual")}
}

// Attach marks idx connected and routes force updates to onForce.
// The returned function detaches the device again.
func (d *Driver) Attach(idx int, onForce func(wheel.ForceState)) (func(), error) {
	if idx < 0 || idx >= MaxDevices {
		return nil, fmt.Errorf("device index %d out of range [0,%d)", idx, MaxDevices)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.devices[idx].attached {
		return nil, fmt.Errorf("%w: index %d", ErrAlreadyAttached, idx)
	}
	d.devices[idx] = device{
		attached: true,
		pending:  wheel.DefaultingSample(),
		state:    wheel.DefaultingSample(),
		onForce:  onForce,
	}
	d.logger.Info("virtual wheel attached", "idx", idx)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.devices[idx] = device{}
		d.logger.Info("virtual wheel detached", "idx", idx)
	}, nil
}

// Feed queues a sample for idx. It becomes visible on the next Update.
func (d *Driver) Feed(idx int, s wheel.RawWheelSample) {
	if idx < 0 || idx >= MaxDevices {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	dev := &d.devices[idx]
	if !dev.attached {
		return
	}
	dev.pending = s
}

// Force returns the force state last requested for idx.
func (d *Driver) Force(idx int) wheel.ForceState {
	if idx < 0 || idx >= MaxDevices {
		return wheel.ForceState{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.devices[idx].force
}

func (d *Driver) Name() string { return "virtual" }

func (d *Driver) Initialize(bool) error { return nil }

func (d *Driver) IsConnected(idx int) bool {
	if idx < 0 || idx >= MaxDevices {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.devices[idx].attached
}

func (d *Driver) Update() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.devices {
		if d.devices[i].attached {
			d.devices[i].state = d.devices[i].pending
		}
	}
	return true
}

func (d *Driver) State(idx int) (wheel.RawWheelSample, bool) {
	if idx < 0 || idx >= MaxDevices {
		return wheel.RawWheelSample{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	dev := d.devices[idx]
	if !dev.attached {
		return wheel.RawWheelSample{}, false
	}
	return dev.state, true
}

func (d *Driver) FriendlyName(idx int) (string, error) {
	if !d.IsConnected(idx) {
		return "", fmt.Errorf("no virtual wheel on index %d", idx)
	}
	return fmt.Sprintf("Virtual Wheel %d", idx), nil
}

func (d *Driver) HasForceFeedback(idx int) bool { return d.IsConnected(idx) }

func (d *Driver) PlaySpringForce(idx, offsetPct, saturationPct, coeffPct int) error {
	return d.setForce(idx, wheel.SpringForce(offsetPct, saturationPct, coeffPct))
}

func (d *Driver) StopSpringForce(idx int) error {
	return d.setForce(idx, wheel.ForceState{})
}

// setForce only notifies the client when the effect changes.
func (d *Driver) setForce(idx int, f wheel.ForceState) error {
	if idx < 0 || idx >= MaxDevices {
		return fmt.Errorf("device index %d out of range", idx)
	}
	d.mu.Lock()
	dev := &d.devices[idx]
	if !dev.attached || dev.force == f {
		d.mu.Unlock()
		return nil
	}
	dev.force = f
	cb := dev.onForce
	d.mu.Unlock()

	if cb != nil {
		cb(f)
	}
	return nil
}

func (d *Driver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.devices {
		d.devices[i].force = wheel.ForceState{}
	}
}
