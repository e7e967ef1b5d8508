package input

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/egodrive/wheel"
)

// ChannelChange is one channel that differs between two samples.
type ChannelChange struct {
	Name string
	From int64
	To   int64
}

// Diff lists the analog channels and buttons that changed from prev to cur,
// analog channels first.
func Diff(prev, cur wheel.RawWheelSample) []ChannelChange {
	var out []ChannelChange
	pc, cc := prev.Channels(), cur.Channels()
	for i := range pc {
		if pc[i] != cc[i] {
			out = append(out, ChannelChange{Name: wheel.ChannelNames[i], From: pc[i], To: cc[i]})
		}
	}
	// rgbButtons[0] is already one of the analog channels.
	for i := 1; i < len(prev.Buttons); i++ {
		if prev.Buttons[i] != cur.Buttons[i] {
			out = append(out, ChannelChange{
				Name: fmt.Sprintf("rgbButtons[%d]", i),
				From: int64(prev.Buttons[i]),
				To:   int64(cur.Buttons[i]),
			})
		}
	}
	return out
}

// logChanges writes the header and one line per change. Nothing is logged
// for an empty diff.
func logChanges(logger *slog.Logger, t float64, changes []ChannelChange) {
	if len(changes) == 0 {
		return
	}
	logger.Info(fmt.Sprintf("Logging joystick at t=%.3f", t))
	for _, c := range changes {
		logger.Info(fmt.Sprintf("Triggered %q from %d to %d", c.Name, c.From, c.To))
	}
}
