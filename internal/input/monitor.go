package input

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/egodrive/hmd"
	"github.com/Alia5/egodrive/internal/notify"
	"github.com/Alia5/egodrive/wheel"
)

// Notifier shows transient on-screen messages.
type Notifier interface {
	Show(notify.Message) bool
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	DeviceIdx int
	// Exclusive asks the wheel driver to skip gamepads.
	Exclusive bool

	SpectatorScreen    bool
	ReticleSize        int
	RectangularReticle bool
	HUDScaleVR         float64
}

const (
	wheelMissingKey      = "wheel-missing"
	wheelMissingDuration = 20 * time.Second
	unknownWheelName     = "Unknown"
)

// Monitor tracks the connection state of the headset and the wheel. It never
// blocks: each poll makes at most one attempt and returns.
type Monitor struct {
	cfg      MonitorConfig
	platform hmd.Platform
	driver   wheel.Driver
	notifier Notifier
	logger   *slog.Logger

	hmd   DeviceConnection
	wheel DeviceConnection

	initFailed bool
}

// NewMonitor creates a monitor. notifier may be nil.
func NewMonitor(cfg MonitorConfig, platform hmd.Platform, driver wheel.Driver, notifier Notifier, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:      cfg,
		platform: platform,
		driver:   driver,
		notifier: notifier,
		logger:   logger.With("component", "monitor"),
		hmd:      DeviceConnection{Kind: DeviceHMD},
		wheel:    DeviceConnection{Kind: DeviceWheel},
	}
}

// HMD returns the last known headset state.
func (m *Monitor) HMD() DeviceConnection { return m.hmd }

// Wheel returns the last known wheel state.
func (m *Monitor) Wheel() DeviceConnection { return m.wheel }

// PollHMD checks the headset once.
func (m *Monitor) PollHMD() DeviceConnection {
	m.hmd.LastCheckedTick++
	connected := m.platform.IsConnected()

	switch m.hmd.State {
	case Unavailable:
		if !connected || !m.platform.IsEnabled() {
			return m.hmd
		}
		m.hmd.State = Available
		m.hmd.Name = m.platform.DeviceName()
		m.platform.SetTrackingOrigin(hmd.OriginEye)
		if m.cfg.SpectatorScreen {
			size := hmd.ReticleSize(m.cfg.ReticleSize, m.cfg.HUDScaleVR, true)
			m.platform.SetSpectatorScreenTexture(hmd.Reticle(size, m.cfg.RectangularReticle))
			m.platform.SetSpectatorScreenMode(hmd.SpectatorTexturePlusEye)
		} else {
			m.platform.SetSpectatorScreenMode(hmd.SpectatorDisabled)
		}
		m.logger.Info("HMD found", "name", m.hmd.Name)
	case Available:
		if !connected {
			m.hmd.State = Unavailable
			m.logger.Warn("HMD disconnected", "name", m.hmd.Name)
		}
	}
	return m.hmd
}

// PollWheel checks the wheel once.
func (m *Monitor) PollWheel() DeviceConnection {
	m.wheel.LastCheckedTick++
	idx := m.cfg.DeviceIdx

	if m.wheel.State == Available {
		if m.driver.IsConnected(idx) {
			m.wheel.ForceFeedback = m.driver.HasForceFeedback(idx)
			return m.wheel
		}
		m.wheel.State = Unavailable
		m.wheel.ForceFeedback = false
		m.logger.Warn("wheel disconnected", "name", m.wheel.Name, "index", idx)
	}

	if err := m.driver.Initialize(m.cfg.Exclusive); err != nil {
		if !m.initFailed {
			m.logger.Debug("wheel driver initialization failed", "driver", m.driver.Name(), "error", err)
		}
		m.initFailed = true
		m.wheelMissing(idx)
		return m.wheel
	}
	m.initFailed = false
	if !m.driver.IsConnected(idx) {
		m.wheelMissing(idx)
		return m.wheel
	}

	name, err := m.driver.FriendlyName(idx)
	if err != nil || name == "" {
		m.logger.Warn("could not read wheel name", "index", idx, "error", err)
		name = unknownWheelName
	}
	m.wheel.State = Available
	m.wheel.Name = name
	m.wheel.ForceFeedback = m.driver.HasForceFeedback(idx)
	m.logger.Info("wheel found", "name", name, "index", idx, "driver", m.driver.Name(),
		"force_feedback", m.wheel.ForceFeedback)
	return m.wheel
}

func (m *Monitor) wheelMissing(idx int) {
	if m.notifier == nil {
		return
	}
	m.notifier.Show(notify.Message{
		Key:      wheelMissingKey,
		Text:     fmt.Sprintf("Could not find wheel device connected on input %d", idx),
		Duration: wheelMissingDuration,
		Color:    notify.Red,
	})
}
