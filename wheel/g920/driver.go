//go:build hid

package g920

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sstallion/go-hid"

	"github.com/Alia5/egodrive/wheel"
)

func init() {
	wheel.RegisterDriver("g920", registration{})
}

type registration struct{}

func (registration) CreateDriver(logger *slog.Logger) wheel.Driver { return New(logger) }

func (registration) Available() bool {
	if err := hid.Init(); err != nil {
		return false
	}
	found := false
	_ = hid.Enumerate(VendorID, ProductID, func(*hid.DeviceInfo) error {
		found = true
		return nil
	})
	return found
}

// ErrNoForceFeedback is returned by the spring calls; the G920 force
// protocol is not implemented.
var ErrNoForceFeedback = errors.New("g920: force feedback not supported")

// Driver reads the first G920 found. Only device index 0 exists.
type Driver struct {
	mu     sync.Mutex
	logger *slog.Logger
	dev    *hid.Device
	name   string
	sample wheel.RawWheelSample
	buf    []byte
}

// New returns a driver that opens the wheel on Initialize.
func New(logger *slog.Logger) *Driver {
	return &Driver{
		logger: logger.With("driver", "g920"),
		sample: wheel.ReleasedSample(),
		buf:    make([]byte, 64),
	}
}

func (d *Driver) Name() string { return "g920" }

func (d *Driver) Initialize(bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		return nil
	}
	if err := hid.Init(); err != nil {
		return fmt.Errorf("hid init: %w", err)
	}
	dev, err := hid.OpenFirst(VendorID, ProductID)
	if err != nil {
		return fmt.Errorf("open g920: %w", err)
	}
	if err := dev.SetNonblock(true); err != nil {
		_ = dev.Close()
		return fmt.Errorf("set nonblocking: %w", err)
	}
	d.name = "Logitech G920"
	if info, err := dev.GetDeviceInfo(); err == nil && info.ProductStr != "" {
		d.name = info.ProductStr
	}
	d.dev = dev
	return nil
}

func (d *Driver) IsConnected(idx int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return idx == 0 && d.dev != nil
}

// Update drains every pending report and keeps the newest.
func (d *Driver) Update() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return false
	}
	for {
		n, err := d.dev.Read(d.buf)
		if err != nil {
			d.logger.Warn("g920 read failed, closing device", "error", err)
			_ = d.dev.Close()
			d.dev = nil
			return false
		}
		if n == 0 {
			return true
		}
		r, err := Decode(d.buf[:n])
		if err != nil {
			d.logger.Debug("skipping g920 report", "error", err)
			continue
		}
		d.sample = r.Sample()
	}
}

func (d *Driver) State(idx int) (wheel.RawWheelSample, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if idx != 0 || d.dev == nil {
		return wheel.RawWheelSample{}, false
	}
	return d.sample, true
}

func (d *Driver) FriendlyName(idx int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if idx != 0 || d.dev == nil {
		return "", fmt.Errorf("no g920 on index %d", idx)
	}
	return d.name, nil
}

func (d *Driver) HasForceFeedback(int) bool { return false }

func (d *Driver) PlaySpringForce(int, int, int, int) error { return ErrNoForceFeedback }

func (d *Driver) StopSpringForce(int) error { return nil }

func (d *Driver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		_ = d.dev.Close()
		d.dev = nil
	}
	_ = hid.Exit()
}
