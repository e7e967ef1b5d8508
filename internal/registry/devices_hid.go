//go:build hid

package registry

import (
	_ "github.com/Alia5/egodrive/wheel/g920" // Register the Logitech G920 HID wheel
)
