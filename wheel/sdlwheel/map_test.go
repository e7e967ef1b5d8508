package sdlwheel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/egodrive/wheel"
)

func TestHatToPOV(t *testing.T) {
	tests := []struct {
		hat  uint8
		want wheel.DPad
	}{
		{0, wheel.DPadNone},
		{HatUp, wheel.DPadUp},
		{HatRight, wheel.DPadRight},
		{HatDown, wheel.DPadDown},
		{HatLeft, wheel.DPadLeft},
		{HatUp | HatRight, wheel.DPadNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wheel.DecodePOV(HatToPOV(tt.hat)), "hat %#x", tt.hat)
	}
	assert.Equal(t, uint32(22500), HatToPOV(HatDown|HatLeft))
}

func TestFrameSample(t *testing.T) {
	f := Frame{
		Axes:    []int16{-32768, 32767, 5, 6, 7, -32768, 1, 2, 99},
		Hats:    []uint8{HatDown},
		Buttons: []uint8{0, 1, 0, 0, 0, 1},
	}
	s := f.Sample()
	assert.Equal(t, int32(-32768), s.LX)
	assert.Equal(t, int32(-32768), s.LRz)
	assert.Equal(t, [2]int32{1, 2}, s.Slider)
	assert.Equal(t, [4]uint32{18000, wheel.POVReleased, wheel.POVReleased, wheel.POVReleased}, s.POV)

	n := wheel.Normalize(s)
	assert.Equal(t, -1.0, n.WheelRotation)
	assert.Zero(t, n.AccelPedal)
	assert.InDelta(t, 1, n.BrakePedal, 1e-9)
	assert.Equal(t, wheel.DPadDown, n.DPad)
	assert.True(t, n.Buttons.Has(1))
	assert.True(t, n.Buttons.Has(5))
	assert.False(t, n.Buttons.Has(0))
}

func TestSpringParams(t *testing.T) {
	sp := SpringParams(wheel.SpringForce(0, 30, 100))
	assert.Equal(t, Spring{Center: 0, Saturation: 19660, Coeff: 0x7fff}, sp)
	assert.Equal(t, int16(-0x7fff), SpringParams(wheel.SpringForce(-100, 0, 0)).Center)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		enumerated []int32
		open       map[int32]bool
		toOpen     []int
		stale      []int32
	}{
		{name: "nothing attached"},
		{name: "first scan opens all", enumerated: []int32{0, 1}, toOpen: []int{0, 1}},
		{name: "already open", enumerated: []int32{0, 1}, open: map[int32]bool{0: true, 1: true}},
		{
			name:       "removal shifts indices",
			enumerated: []int32{1},
			open:       map[int32]bool{0: true, 1: true},
			stale:      []int32{0},
		},
		{
			name:       "replug gets a new instance",
			enumerated: []int32{1, 2},
			open:       map[int32]bool{1: true},
			toOpen:     []int{1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toOpen, stale := Reconcile(tt.enumerated, tt.open)
			assert.Equal(t, tt.toOpen, toOpen)
			assert.Equal(t, tt.stale, stale)
		})
	}
}
