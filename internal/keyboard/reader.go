package keyboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when raw keyboard input is requested on
// something that is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Config configures the keyboard control source.
type Config struct {
	Enabled     bool          `help:"Read driving keys from the terminal" default:"true" env:"EGODRIVE_KEYBOARD_ENABLED"`
	HoldTime    time.Duration `help:"Time a key counts as held after its last repeat" default:"150ms" env:"EGODRIVE_KEYBOARD_HOLD_TIME"`
	RepeatDelay time.Duration `help:"Time a key counts as held before the terminal starts repeating it" default:"700ms" env:"EGODRIVE_KEYBOARD_REPEAT_DELAY"`
}

// Reader decodes keys from r and publishes their events.
type Reader struct {
	r      io.Reader
	keymap Keymap
	events chan Event
	logger *slog.Logger
}

// NewReader returns a reader using keymap.
func NewReader(r io.Reader, keymap Keymap, logger *slog.Logger) *Reader {
	return &Reader{
		r:      r,
		keymap: keymap,
		events: make(chan Event, 64),
		logger: logger.With("component", "keyboard"),
	}
}

// Events returns the event channel. It is closed when Run returns.
func (r *Reader) Events() <-chan Event { return r.events }

// Run reads until the input fails or ctx is cancelled. Events that do not fit
// in the channel are dropped.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.events)
	buf := make([]byte, 64)
	for {
		n, err := r.r.Read(buf)
		for _, k := range Decode(buf[:n]) {
			ev, ok := r.keymap[k]
			if !ok {
				continue
			}
			select {
			case r.events <- ev:
			case <-ctx.Done():
				return nil
			default:
				r.logger.Debug("keyboard event dropped", "name", ev.Name)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read keyboard: %w", err)
		}
	}
}

// RawTerminal puts f into raw mode. The returned function restores it.
func RawTerminal(f *os.File) (func(), error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw terminal: %w", err)
	}
	return func() { _ = term.Restore(fd, old) }, nil
}
