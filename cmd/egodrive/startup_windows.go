//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/Alia5/egodrive/internal/util"
)

// Double-clicking the binary starts a drive session with the config file.
func init() {
	if !util.IsRunFromGUI() {
		return
	}
	args := os.Args
	if len(args) < 2 || args[1] != "drive" {
		slog.Info("Detected GUI startup, injecting 'drive' argument")
		slog.Warn("Run from a CLI for more options!")
		newArgs := make([]string, 0, len(args)+1)
		newArgs = append(newArgs, args[0], "drive")
		newArgs = append(newArgs, args[1:]...)
		os.Args = newArgs
	}
}
