//go:build !windows

package util

// IsRunFromGUI reports false everywhere but Windows. Other platforms start
// drive sessions from a shell or a service manager.
func IsRunFromGUI() bool {
	return false
}

func HideConsoleWindow() {
	// No-op on non-Windows platforms
}
