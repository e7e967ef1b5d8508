// Package registry links the wheel drivers into the binary. Hardware drivers
// need cgo and are added by build tags.
package registry

import (
	_ "github.com/Alia5/egodrive/wheel/virtual" // Register the network-fed wheel
)
