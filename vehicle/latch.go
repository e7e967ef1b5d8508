package vehicle

// EdgeLatch fires once per physical press. The zero value is armed.
type EdgeLatch struct {
	fired bool
}

// Trigger reports whether a press should act, and disarms the latch.
func (l *EdgeLatch) Trigger() bool {
	if l.fired {
		return false
	}
	l.fired = true
	return true
}

// Release re-arms the latch.
func (l *EdgeLatch) Release() { l.fired = false }

// CanTrigger reports whether the next press will act.
func (l EdgeLatch) CanTrigger() bool { return !l.fired }
