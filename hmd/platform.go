// Package hmd abstracts the head-mounted display platform: connection and
// enable state, tracking origin and the spectator screen.
package hmd

import (
	"fmt"
	"image"
	"strings"
)

// TrackingOrigin selects the reference frame for headset tracking.
type TrackingOrigin int

const (
	OriginFloor TrackingOrigin = iota
	OriginEye
)

func (o TrackingOrigin) String() string {
	if o == OriginEye {
		return "eye"
	}
	return "floor"
}

// SpectatorMode controls what the desktop mirror window shows.
type SpectatorMode int

const (
	SpectatorDisabled SpectatorMode = iota
	SpectatorSingleEye
	SpectatorTexturePlusEye
)

func (m SpectatorMode) String() string {
	switch m {
	case SpectatorSingleEye:
		return "single-eye"
	case SpectatorTexturePlusEye:
		return "texture-plus-eye"
	default:
		return "disabled"
	}
}

// Platform is the headset runtime. Calls must not block.
type Platform interface {
	// IsConnected reports whether a headset is plugged in at all.
	IsConnected() bool
	// IsEnabled reports whether the runtime is active and rendering to the headset.
	// Calling it may advance runtime initialization.
	IsEnabled() bool
	DeviceName() string
	SetTrackingOrigin(TrackingOrigin)
	SetSpectatorScreenMode(SpectatorMode)
	SetSpectatorScreenTexture(image.Image)
}

// New returns the platform named by driver ("none" or "virtual").
func New(driver string, warmupPolls int) (Platform, error) {
	switch strings.ToLower(driver) {
	case "", "none", "null":
		return Null{}, nil
	case "virtual":
		return NewVirtual(warmupPolls), nil
	default:
		return nil, fmt.Errorf("unknown hmd driver %q", driver)
	}
}

// Null is a platform with no headset.
type Null struct{}

func (Null) IsConnected() bool { return false }
func (Null) IsEnabled() bool { return false }
func (Null) DeviceName() string { return "" }
func (Null) SetTrackingOrigin(TrackingOrigin) {}
func (Null) SetSpectatorScreenMode(SpectatorMode) {}
func (Null) SetSpectatorScreenTexture(image.Image) {}
