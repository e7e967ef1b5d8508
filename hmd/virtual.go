package hmd

import (
	"image"
	"sync"
)

// Virtual simulates a headset runtime that needs a number of enable polls
// before it reports enabled. Connect and Disconnect may be called from any goroutine.
type Virtual struct {
	mu        sync.Mutex
	connected bool
	enabled   bool
	warmup    int
	remaining int

	origin  TrackingOrigin
	mode    SpectatorMode
	texture image.Image
}

// NewVirtual returns a connected virtual headset enabling after warmupPolls calls to IsEnabled.
func NewVirtual(warmupPolls int) *Virtual {
	if warmupPolls < 0 {
		warmupPolls = 0
	}
	return &Virtual{connected: true, warmup: warmupPolls, remaining: warmupPolls}
}

// Connect plugs the headset in; the runtime needs to warm up again.
func (v *Virtual) Connect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.connected = true
	v.enabled = false
	v.remaining = v.warmup
}

// Disconnect unplugs the headset.
func (v *Virtual) Disconnect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.connected = false
	v.enabled = false
}

func (v *Virtual) IsConnected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected
}

func (v *Virtual) IsEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.connected {
		return false
	}
	if !v.enabled {
		if v.remaining > 0 {
			v.remaining--
			return false
		}
		v.enabled = true
	}
	return true
}

func (v *Virtual) DeviceName() string { return "Virtual HMD" }

func (v *Virtual) SetTrackingOrigin(o TrackingOrigin) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.origin = o
}

func (v *Virtual) SetSpectatorScreenMode(m SpectatorMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = m
}

func (v *Virtual) SetSpectatorScreenTexture(img image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.texture = img
}

// Spectator returns the current tracking origin, spectator mode and texture.
func (v *Virtual) Spectator() (TrackingOrigin, SpectatorMode, image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.origin, v.mode, v.texture
}
