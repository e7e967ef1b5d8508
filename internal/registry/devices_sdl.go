//go:build sdl

package registry

import (
	_ "github.com/Alia5/egodrive/wheel/sdlwheel" // Register the SDL joystick wheel
)
