package keyboard

import (
	"sort"
	"time"
)

// State tracks which axes and actions are held. It is owned by the tick loop.
//
// Terminals report no key-up, only the first press and then autorepeats. The
// first repeat comes after the terminal's repeat delay (up to ~660ms), later
// ones are close together. A key therefore counts as held for repeatDelay
// after its first byte and for hold after every repeat.
type State struct {
	hold        time.Duration
	repeatDelay time.Duration
	axes        map[string]heldAxis
	actions     map[string]time.Time
}

type heldAxis struct {
	value float64
	until time.Time
}

// NewState returns a state that releases a key repeatDelay after its first
// press unless it repeats, and hold after its last repeat. repeatDelay is
// raised to hold when shorter.
func NewState(hold, repeatDelay time.Duration) *State {
	return &State{
		hold:        hold,
		repeatDelay: max(hold, repeatDelay),
		axes:        make(map[string]heldAxis),
		actions:     make(map[string]time.Time),
	}
}

// Axis records an axis key press.
func (s *State) Axis(name string, v float64, now time.Time) {
	window := s.repeatDelay
	if _, held := s.axes[name]; held {
		window = s.hold
	}
	s.axes[name] = heldAxis{value: v, until: now.Add(window)}
}

// Press records an action key press and reports whether the action was not
// already held.
func (s *State) Press(name string, now time.Time) bool {
	if _, held := s.actions[name]; held {
		s.actions[name] = now.Add(s.hold)
		return false
	}
	s.actions[name] = now.Add(s.repeatDelay)
	return true
}

// AxisValues returns the value of every held axis. An axis whose hold ran out
// is reported once more with value zero and then forgotten.
func (s *State) AxisValues(now time.Time) map[string]float64 {
	out := make(map[string]float64, len(s.axes))
	for name, a := range s.axes {
		if now.After(a.until) {
			out[name] = 0
			delete(s.axes, name)
			continue
		}
		out[name] = a.value
	}
	return out
}

// Released returns, sorted, the actions whose hold ran out and forgets them.
func (s *State) Released(now time.Time) []string {
	var out []string
	for name, until := range s.actions {
		if now.After(until) {
			out = append(out, name)
			delete(s.actions, name)
		}
	}
	sort.Strings(out)
	return out
}
