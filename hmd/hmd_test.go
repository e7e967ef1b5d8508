package hmd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/hmd"
)

func TestVirtualWarmup(t *testing.T) {
	v := hmd.NewVirtual(2)
	assert.True(t, v.IsConnected())
	assert.False(t, v.IsEnabled())
	assert.False(t, v.IsEnabled())
	assert.True(t, v.IsEnabled())
	assert.True(t, v.IsEnabled())

	v.Disconnect()
	assert.False(t, v.IsConnected())
	assert.False(t, v.IsEnabled())

	v.Connect()
	assert.False(t, v.IsEnabled())
}

func TestNew(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
		virtual bool
	}{
		{driver: "none"},
		{driver: ""},
		{driver: "Virtual", virtual: true},
		{driver: "steamvr", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			p, err := hmd.New(tt.driver, 0)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isVirtual := p.(*hmd.Virtual)
			assert.Equal(t, tt.virtual, isVirtual)
		})
	}
}

func TestReticleSize(t *testing.T) {
	assert.Equal(t, 64, hmd.ReticleSize(64, 2, false))
	assert.Equal(t, 128, hmd.ReticleSize(64, 2, true))
	assert.Equal(t, 64, hmd.ReticleSize(64, 0, true))
	assert.Equal(t, 1, hmd.ReticleSize(0, 1, false))
}

func TestReticle(t *testing.T) {
	tests := []struct {
		name        string
		rectangular bool
		onPixels    [][2]int
		offPixels   [][2]int
	}{
		{
			name:        "square",
			rectangular: true,
			onPixels:    [][2]int{{0, 0}, {99, 99}, {50, 0}},
			offPixels:   [][2]int{{50, 50}, {25, 25}},
		},
		{
			name:      "crosshair",
			onPixels:  [][2]int{{50, 50}, {50, 1}, {1, 50}},
			offPixels: [][2]int{{0, 0}, {99, 99}, {25, 25}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := hmd.Reticle(100, tt.rectangular)
			assert.Equal(t, 100, img.Bounds().Dx())
			for _, p := range tt.onPixels {
				assert.Equal(t, hmd.ReticleColor, img.NRGBAAt(p[0], p[1]), "pixel %v", p)
			}
			for _, p := range tt.offPixels {
				assert.Equal(t, uint8(0), img.NRGBAAt(p[0], p[1]).A, "pixel %v", p)
			}
		})
	}
}
