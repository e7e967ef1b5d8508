// Package wheel provides the steering wheel sample model, normalization and
// the driver abstraction used to talk to wheel hardware.
package wheel

import (
	"encoding/binary"
	"io"
)

const (
	// NumChannels is the number of named analog channels in a RawWheelSample.
	NumChannels = 34
	// NumButtons is the size of the button array.
	NumButtons = 128
	// SampleSize is the size of a marshaled RawWheelSample in bytes.
	SampleSize = 36*4 + NumButtons

	// AxisMin and AxisMax bound the signed 16-bit driver axis range.
	AxisMin = -32768
	AxisMax = 32767

	// POVReleased is the point-of-view value reported when the d-pad is not pressed.
	POVReleased uint32 = 0xFFFF
)

// RawWheelSample mirrors the DirectInput DIJOYSTATE2 layout reported by wheel drivers.
// Axis fields hold the signed 16-bit driver range but are kept as int32 so
// out-of-range hardware noise survives until normalization.
type RawWheelSample struct {
	// Position: X is the wheel, Y the accelerator, Rz the brake on most wheels.
	LX, LY, LZ    int32
	LRx, LRy, LRz int32
	Slider        [2]int32
	// POV holds d-pad positions in hundredths of a degree, POVReleased when centred.
	POV [4]uint32

	// Velocity
	LVX, LVY, LVZ    int32
	LVRx, LVRy, LVRz int32
	VSlider          [2]int32

	// Acceleration
	LAX, LAY, LAZ    int32
	LARx, LARy, LARz int32
	ASlider          [2]int32

	// Force
	LFX, LFY, LFZ    int32
	LFRx, LFRy, LFRz int32
	FSlider          [2]int32

	// Buttons is non-zero while the button is held.
	Buttons [NumButtons]byte
}

// ChannelNames lists the analog channels in the order returned by Channels.
var ChannelNames = [NumChannels]string{
	"lX", "lY", "lZ", "lRx", "lRy", "lRz",
	"rglSlider[0]", "rglSlider[1]", "rgdwPOV[0]", "rgbButtons[0]",
	"lVX", "lVY", "lVZ", "lVRx", "lVRy", "lVRz",
	"rglVSlider[0]", "rglVSlider[1]",
	"lAX", "lAY", "lAZ", "lARx", "lARy", "lARz",
	"rglASlider[0]", "rglASlider[1]",
	"lFX", "lFY", "lFZ", "lFRx", "lFRy", "lFRz",
	"rglFSlider[0]", "rglFSlider[1]",
}

// ReleasedSample returns a sample with the wheel centred, pedals released and the
// d-pad centred.
func ReleasedSample() RawWheelSample {
	s := DefaultingSample()
	s.LY = AxisMax
	s.LRz = AxisMax
	return s
}

// DefaultingSample returns what some drivers report until the wheel or pedals are
// first touched: every axis at zero, which reads as half-pressed pedals.
func DefaultingSample() RawWheelSample {
	var s RawWheelSample
	for i := range s.POV {
		s.POV[i] = POVReleased
	}
	return s
}

// Channels returns the analog channel values in ChannelNames order.
func (s *RawWheelSample) Channels() [NumChannels]int64 {
	return [NumChannels]int64{
		int64(s.LX), int64(s.LY), int64(s.LZ), int64(s.LRx), int64(s.LRy), int64(s.LRz),
		int64(s.Slider[0]), int64(s.Slider[1]), int64(s.POV[0]), int64(s.Buttons[0]),
		int64(s.LVX), int64(s.LVY), int64(s.LVZ), int64(s.LVRx), int64(s.LVRy), int64(s.LVRz),
		int64(s.VSlider[0]), int64(s.VSlider[1]),
		int64(s.LAX), int64(s.LAY), int64(s.LAZ), int64(s.LARx), int64(s.LARy), int64(s.LARz),
		int64(s.ASlider[0]), int64(s.ASlider[1]),
		int64(s.LFX), int64(s.LFY), int64(s.LFZ), int64(s.LFRx), int64(s.LFRy), int64(s.LFRz),
		int64(s.FSlider[0]), int64(s.FSlider[1]),
	}
}

// Pressed reports whether button id is held.
func (s *RawWheelSample) Pressed(id int) bool {
	if id < 0 || id >= NumButtons {
		return false
	}
	return s.Buttons[id] != 0
}

func (s *RawWheelSample) words() []*int32 {
	return []*int32{
		&s.LX, &s.LY, &s.LZ, &s.LRx, &s.LRy, &s.LRz, &s.Slider[0], &s.Slider[1],
		&s.LVX, &s.LVY, &s.LVZ, &s.LVRx, &s.LVRy, &s.LVRz, &s.VSlider[0], &s.VSlider[1],
		&s.LAX, &s.LAY, &s.LAZ, &s.LARx, &s.LARy, &s.LARz, &s.ASlider[0], &s.ASlider[1],
		&s.LFX, &s.LFY, &s.LFZ, &s.LFRx, &s.LFRy, &s.LFRz, &s.FSlider[0], &s.FSlider[1],
	}
}

// MarshalBinary encodes the sample into SampleSize bytes.
// Layout (little-endian):
//
//	  0-31:  lX lY lZ lRx lRy lRz slider[0] slider[1]   (int32)
//	 32-47:  pov[0..3]                                   (uint32)
//	 48-79:  velocity block                              (int32)
//	 80-111: acceleration block                          (int32)
//	112-143: force block                                 (int32)
//	144-271: buttons
func (s *RawWheelSample) MarshalBinary() ([]byte, error) {
	b := make([]byte, SampleSize)
	words := s.words()
	off := 0
	for i, w := range words {
		if i == 8 {
			for _, p := range s.POV {
				binary.LittleEndian.PutUint32(b[off:off+4], p)
				off += 4
			}
		}
		binary.LittleEndian.PutUint32(b[off:off+4], uint32(*w))
		off += 4
	}
	copy(b[off:], s.Buttons[:])
	return b, nil
}

// UnmarshalBinary decodes a sample produced by MarshalBinary.
func (s *RawWheelSample) UnmarshalBinary(data []byte) error {
	if len(data) < SampleSize {
		return io.ErrUnexpectedEOF
	}
	words := s.words()
	off := 0
	for i, w := range words {
		if i == 8 {
			for j := range s.POV {
				s.POV[j] = binary.LittleEndian.Uint32(data[off : off+4])
				off += 4
			}
		}
		*w = int32(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	copy(s.Buttons[:], data[off:off+NumButtons])
	return nil
}
