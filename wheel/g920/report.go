// Package g920 reads a Logitech G920 wheel through raw HID input reports.
package g920

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alia5/egodrive/wheel"
)

// USB ids of the G920 in Xbox mode.
const (
	VendorID  uint16 = 0x046d
	ProductID uint16 = 0xc262
)

// Input report layout.
const (
	ReportLength = 10

	ReportType      = 0
	DpadXboxABXY    = 1
	ButtonsFlappy   = 2
	Unknown3        = 3
	WheelLowByte    = 4
	WheelHighByte   = 5
	PedalRight      = 6
	PedalMiddle     = 7
	PedalLeft       = 8
	Unknown9        = 9
	StateReportType = 1
)

const hatReleased = 8

var (
	ErrShortReport = errors.New("short g920 report")
	ErrReportType  = errors.New("unexpected g920 report type")
)

// Report is a decoded input report. Pedals read 255 when released and 0 when
// fully pressed.
type Report struct {
	Hat         uint8
	FaceButtons uint8
	Buttons     uint8
	Wheel       uint16
	PedalLeft   uint8
	PedalMiddle uint8
	PedalRight  uint8
}

// Decode parses one input report.
func Decode(buf []byte) (Report, error) {
	if len(buf) < ReportLength {
		return Report{}, fmt.Errorf("%w: %d bytes", ErrShortReport, len(buf))
	}
	if buf[ReportType] != StateReportType {
		return Report{}, fmt.Errorf("%w: %d", ErrReportType, buf[ReportType])
	}
	return Report{
		Hat:         buf[DpadXboxABXY] & 0x0f,
		FaceButtons: buf[DpadXboxABXY] >> 4,
		Buttons:     buf[ButtonsFlappy],
		Wheel:       uint16(buf[WheelHighByte])<<8 | uint16(buf[WheelLowByte]),
		PedalLeft:   buf[PedalLeft],
		PedalMiddle: buf[PedalMiddle],
		PedalRight:  buf[PedalRight],
	}, nil
}

// Sample converts r into the DirectInput layout the rest of the system uses:
// wheel on lX, accelerator on lY, brake on lRz and clutch on the first slider.
// A, B, X and Y become buttons 0-3; the paddles and the remaining buttons
// follow from 4.
func (r Report) Sample() wheel.RawWheelSample {
	s := wheel.ReleasedSample()
	s.LX = int32(r.Wheel) - 32768
	s.LY = pedalAxis(r.PedalRight)
	s.LRz = pedalAxis(r.PedalMiddle)
	s.Slider[0] = pedalAxis(r.PedalLeft)
	if r.Hat < hatReleased {
		s.POV[0] = uint32(r.Hat) * 4500
	}
	for i := 0; i < 4; i++ {
		if r.FaceButtons&(1<<i) != 0 {
			s.Buttons[i] = 0x80
		}
	}
	for i := 0; i < 8; i++ {
		if r.Buttons&(1<<i) != 0 {
			s.Buttons[4+i] = 0x80
		}
	}
	return s
}

// pedalAxis maps 255 (released) to 32767 and 0 (pressed) to -32768.
func pedalAxis(raw uint8) int32 {
	pressed := 1 - float64(raw)/255
	return wheel.AxisMax - int32(math.Round(pressed*65535))
}
