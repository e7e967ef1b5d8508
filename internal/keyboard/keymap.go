package keyboard

import (
	"github.com/Alia5/egodrive/internal/input"
)

// Kind of a keyboard event.
type Kind int

const (
	KindAxis Kind = iota
	KindAction
	KindCommand
)

// Session commands a key can trigger.
const (
	CommandResume = "resume"
	CommandQuit   = "quit"
)

// Event is what a key press means to the session.
type Event struct {
	Kind  Kind
	Name  string
	Value float64
}

// Keymap maps keys to events.
type Keymap map[Key]Event

func axis(name string, v float64) Event { return Event{Kind: KindAxis, Name: name, Value: v} }

func action(name string) Event { return Event{Kind: KindAction, Name: name} }

func command(name string) Event { return Event{Kind: KindCommand, Name: name} }

// DefaultKeymap is the built-in layout.
func DefaultKeymap() Keymap {
	return Keymap{
		runeKey('w'):         axis(input.BindThrottle, 1),
		specialKey(KeyUp):    axis(input.BindThrottle, 1),
		runeKey('s'):         axis(input.BindBrake, 1),
		specialKey(KeyDown):  axis(input.BindBrake, 1),
		runeKey('a'):         axis(input.BindSteer, -1),
		specialKey(KeyLeft):  axis(input.BindSteer, -1),
		runeKey('d'):         axis(input.BindSteer, 1),
		specialKey(KeyRight): axis(input.BindSteer, 1),
		runeKey('r'):         action(input.BindToggleReverse),
		runeKey('q'):         action(input.BindTurnSignalLeft),
		runeKey('e'):         action(input.BindTurnSignalRight),
		runeKey(' '):         action(input.BindHoldHandbrake),
		runeKey('i'):         action(input.BindCameraFwd),
		runeKey('k'):         action(input.BindCameraBack),
		runeKey('j'):         action(input.BindCameraLeft),
		runeKey('l'):         action(input.BindCameraRight),
		runeKey('u'):         action(input.BindCameraUp),
		runeKey('o'):         action(input.BindCameraDown),
		runeKey('p'):         command(CommandResume),
		specialKey(KeyCtrlC): command(CommandQuit),
	}
}
