package wheel

import "io"

// ForceStateSize is the size of a marshaled ForceState.
const ForceStateSize = 4

// ForceState describes the spring effect a driver should render.
// Fields are percentages; Active=false means no force.
type ForceState struct {
	Active     bool
	Offset     int8
	Saturation uint8
	Coeff      uint8
}

// MarshalBinary encodes the state as [active, offset, saturation, coeff].
func (f ForceState) MarshalBinary() ([]byte, error) {
	b := make([]byte, ForceStateSize)
	if f.Active {
		b[0] = 1
	}
	b[1] = byte(f.Offset)
	b[2] = f.Saturation
	b[3] = f.Coeff
	return b, nil
}

// UnmarshalBinary decodes a state produced by MarshalBinary.
func (f *ForceState) UnmarshalBinary(data []byte) error {
	if len(data) < ForceStateSize {
		return io.ErrUnexpectedEOF
	}
	f.Active = data[0] != 0
	f.Offset = int8(data[1])
	f.Saturation = data[2]
	f.Coeff = data[3]
	return nil
}

// SpringForce builds an active ForceState, clamping percentages into range.
func SpringForce(offsetPct, saturationPct, coeffPct int) ForceState {
	return ForceState{
		Active:     true,
		Offset:     int8(clampPct(offsetPct, -100, 100)),
		Saturation: uint8(clampPct(saturationPct, 0, 100)),
		Coeff:      uint8(clampPct(coeffPct, 0, 100)),
	}
}

func clampPct(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
