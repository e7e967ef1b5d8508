package hmd

import (
	"image"
	"image/color"
	"math"
)

// ReticleColor is the translucent red used for the spectator reticle.
var ReticleColor = color.NRGBA{R: 255, A: 128}

// ReticleSize returns the reticle edge length in pixels, scaled by hudScaleVR
// when a headset is connected.
func ReticleSize(base int, hudScaleVR float64, hmdConnected bool) int {
	if hmdConnected && hudScaleVR > 0 {
		base = int(math.Round(float64(base) * hudScaleVR))
	}
	if base < 1 {
		base = 1
	}
	return base
}

// Reticle draws a size x size reticle: a square outline when rectangular,
// else a ring with a centre cross. Lines are 10% of the radius thick.
func Reticle(size int, rectangular bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	radius := float64(size) / 2
	thick := math.Max(1, radius/10)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if reticlePixel(x, y, size, radius, thick, rectangular) {
				img.SetNRGBA(x, y, ReticleColor)
			}
		}
	}
	return img
}

func reticlePixel(x, y, size int, radius, thick float64, rectangular bool) bool {
	fx, fy := float64(x)+0.5, float64(y)+0.5
	if rectangular {
		edge := float64(size)
		return fx < thick || fy < thick || fx > edge-thick || fy > edge-thick
	}
	dx, dy := fx-radius, fy-radius
	d := math.Hypot(dx, dy)
	if d <= radius && d >= radius-thick {
		return true
	}
	// short cross strokes inside the ring
	arm := radius / 3
	return (math.Abs(dx) <= thick/2 && math.Abs(dy) <= arm) || (math.Abs(dy) <= thick/2 && math.Abs(dx) <= arm)
}
