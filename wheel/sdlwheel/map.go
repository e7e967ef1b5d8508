// Package sdlwheel drives wheels through the SDL2 joystick and haptic APIs.
//
// The driver itself needs cgo and is only built with the "sdl" tag; the
// mapping from SDL state to wheel samples lives here and is always built.
package sdlwheel

import (
	"slices"

	"github.com/Alia5/egodrive/wheel"
)

// SDL hat bits.
const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08
)

// Frame is the raw state of one SDL joystick.
type Frame struct {
	Axes    []int16
	Hats    []uint8
	Buttons []uint8
}

// HatToPOV converts an SDL hat bitmask into a POV angle.
func HatToPOV(hat uint8) uint32 {
	switch hat {
	case HatUp:
		return 0
	case HatUp | HatRight:
		return 4500
	case HatRight:
		return 9000
	case HatDown | HatRight:
		return 13500
	case HatDown:
		return 18000
	case HatDown | HatLeft:
		return 22500
	case HatLeft:
		return 27000
	case HatUp | HatLeft:
		return 31500
	default:
		return wheel.POVReleased
	}
}

// Sample maps the frame onto the DirectInput layout. SDL axes 0-5 become
// lX, lY, lZ, lRx, lRy, lRz and axes 6 and 7 the sliders.
func (f Frame) Sample() wheel.RawWheelSample {
	s := wheel.DefaultingSample()
	axes := []*int32{&s.LX, &s.LY, &s.LZ, &s.LRx, &s.LRy, &s.LRz, &s.Slider[0], &s.Slider[1]}
	for i, v := range f.Axes {
		if i >= len(axes) {
			break
		}
		*axes[i] = int32(v)
	}
	for i, h := range f.Hats {
		if i >= len(s.POV) {
			break
		}
		s.POV[i] = HatToPOV(h)
	}
	for i, b := range f.Buttons {
		if i >= wheel.NumButtons {
			break
		}
		if b != 0 {
			s.Buttons[i] = 0x80
		}
	}
	return s
}

// Spring holds SDL haptic condition parameters for a centring spring.
type Spring struct {
	Center     int16
	Saturation uint16
	Coeff      int16
}

// SpringParams converts percentages into SDL haptic units.
func SpringParams(f wheel.ForceState) Spring {
	return Spring{
		Center:     int16(int32(f.Offset) * 0x7fff / 100),
		Saturation: uint16(uint32(f.Saturation) * 0xffff / 100),
		Coeff:      int16(int32(f.Coeff) * 0x7fff / 100),
	}
}

// Reconcile lines the joysticks SDL enumerates up with the ones already
// open. enumerated holds the instance ID at each device index. It returns
// the device indices still to open and the open instances SDL no longer
// lists. Device indices shift when a joystick goes away, instance IDs do
// not.
func Reconcile(enumerated []int32, open map[int32]bool) (toOpen []int, stale []int32) {
	listed := make(map[int32]bool, len(enumerated))
	for i, id := range enumerated {
		listed[id] = true
		if !open[id] {
			toOpen = append(toOpen, i)
		}
	}
	for id := range open {
		if !listed[id] {
			stale = append(stale, id)
		}
	}
	slices.Sort(stale)
	return toOpen, stale
}
