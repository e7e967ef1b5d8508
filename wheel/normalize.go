package wheel

import "math"

// DPad is the decoded direction of the wheel's point-of-view hat.
type DPad uint8

const (
	DPadNone DPad = iota
	DPadUp
	DPadRight
	DPadDown
	DPadLeft
)

func (d DPad) String() string {
	switch d {
	case DPadUp:
		return "up"
	case DPadRight:
		return "right"
	case DPadDown:
		return "down"
	case DPadLeft:
		return "left"
	default:
		return "none"
	}
}

// POV hat positions in hundredths of a degree.
const (
	POVUp    uint32 = 0
	POVRight uint32 = 9000
	POVDown  uint32 = 18000
	POVLeft  uint32 = 27000
)

// ButtonSet is a bitset of held button ids.
type ButtonSet [NumButtons / 64]uint64

// Has reports whether id is in the set.
func (b ButtonSet) Has(id int) bool {
	if id < 0 || id >= NumButtons {
		return false
	}
	return b[id/64]&(1<<(uint(id)%64)) != 0
}

// Add puts id into the set.
func (b *ButtonSet) Add(id int) {
	if id < 0 || id >= NumButtons {
		return
	}
	b[id/64] |= 1 << (uint(id) % 64)
}

// Any reports whether any of ids is in the set.
func (b ButtonSet) Any(ids ...int) bool {
	for _, id := range ids {
		if b.Has(id) {
			return true
		}
	}
	return false
}

// NormalizedWheelInput holds bounded control signals derived from a RawWheelSample.
type NormalizedWheelInput struct {
	// WheelRotation in [-1, 1], -1 is full left.
	WheelRotation float64
	// AccelPedal in [0, 1], 1 is fully pressed.
	AccelPedal float64
	// BrakePedal in [0, 1].
	BrakePedal float64
	DPad       DPad
	Buttons    ButtonSet
}

// Normalize maps a raw driver sample onto bounded control signals.
//
// The pedal mapping |(raw-32767)/65535| is kept exactly as the drivers document it,
// so a raw value of 65535 reads as 0.5. Results outside the documented range are
// clamped rather than rejected.
func Normalize(s RawWheelSample) NormalizedWheelInput {
	n := NormalizedWheelInput{
		WheelRotation: float64(clamp(s.LX, -AxisMax, AxisMax)) / AxisMax,
		AccelPedal:    pedal(s.LY),
		BrakePedal:    pedal(s.LRz),
		DPad:          DecodePOV(s.POV[0]),
	}
	for i, b := range s.Buttons {
		if b != 0 {
			n.Buttons.Add(i)
		}
	}
	return n
}

// DecodePOV maps a POV value in hundredths of a degree onto a d-pad direction.
// Diagonals and the released sentinel map to DPadNone.
func DecodePOV(v uint32) DPad {
	switch v {
	case POVUp:
		return DPadUp
	case POVRight:
		return DPadRight
	case POVDown:
		return DPadDown
	case POVLeft:
		return DPadLeft
	default:
		return DPadNone
	}
}

func pedal(raw int32) float64 {
	v := math.Abs((float64(raw) - AxisMax) / 65535)
	return math.Min(v, 1)
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
