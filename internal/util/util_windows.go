//go:build windows

package util

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procFreeConsole      = kernel32.NewProc("FreeConsole")
)

// Shells and terminals a drive session is started from when it is not
// double-clicked.
var shells = []string{
	"cmd.exe",
	"powershell.exe",
	"pwsh.exe",
	"wt.exe",
	"conhost.exe",
	"windowsterminal.exe",
	"bash.exe",
}

// IsRunFromGUI reports whether the binary was started from Explorer or
// without a console.
func IsRunFromGUI() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return true
	}
	parent := strings.ToLower(parentProcessName())
	slog.Debug("parent process", "name", parent)
	if slices.Contains(shells, parent) {
		return false
	}
	return parent == "explorer.exe"
}

// HideConsoleWindow hides and detaches the console a GUI start opened.
func HideConsoleWindow() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		slog.Debug("no console window to hide")
		return
	}
	_, _, _ = procShowWindow.Call(hwnd, windows.SW_HIDE)
	_, _, _ = procFreeConsole.Call()
}

type process struct {
	parent uint32
	exe    string
}

func parentProcessName() string {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snapshot)

	procs := map[uint32]process{}
	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	for err = windows.Process32First(snapshot, &pe); err == nil; err = windows.Process32Next(snapshot, &pe) {
		procs[pe.ProcessID] = process{parent: pe.ParentProcessID, exe: windows.UTF16ToString(pe.ExeFile[:])}
	}

	self, ok := procs[uint32(os.Getpid())]
	if !ok || self.parent == 0 {
		return ""
	}
	return procs[self.parent].exe
}
