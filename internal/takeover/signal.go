// Package takeover implements the take-over request (TOR) handshake with the
// scenario runner. Both sides exchange a single digit through a shared file.
package takeover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Signal is the value stored in the signal file.
type Signal int

const (
	// SignalNDRTStarted is written when the reading task starts.
	SignalNDRTStarted Signal = 0
	// SignalNDRTComplete is written when the reading task is finished.
	SignalNDRTComplete Signal = 1
	// SignalTORIssued is written by the scenario runner to request a take-over.
	SignalTORIssued Signal = 2
)

func (s Signal) String() string {
	switch s {
	case SignalNDRTStarted:
		return "ndrt-started"
	case SignalNDRTComplete:
		return "ndrt-complete"
	case SignalTORIssued:
		return "tor-issued"
	default:
		return "signal(" + strconv.Itoa(int(s)) + ")"
	}
}

// ErrNoSignal is returned by Read for a missing or empty file.
var ErrNoSignal = errors.New("no takeover signal")

// File is the shared signal file.
type File struct {
	Path string
}

// Write replaces the file contents with s.
func (f File) Write(s Signal) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".tor-*")
	if err != nil {
		return fmt.Errorf("write takeover signal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(strconv.Itoa(int(s))); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write takeover signal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write takeover signal: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("write takeover signal: %w", err)
	}
	return nil
}

// Read returns the current signal.
func (f File) Read() (Signal, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNoSignal
	}
	if err != nil {
		return 0, fmt.Errorf("read takeover signal: %w", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0, ErrNoSignal
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("read takeover signal: %w", err)
	}
	return Signal(v), nil
}

// Link is the vehicle's end of the signal file. One goroutine polls the
// file for new values and performs every write, so callers on the tick loop
// never touch the disk.
type Link struct {
	signals chan Signal
	writes  chan Signal
}

// Signals returns the values read from the file. The channel holds one
// value; when the reader falls behind only the newest signal is kept. It is
// closed when the watch ends.
func (l *Link) Signals() <-chan Signal { return l.signals }

// Send queues s to be written to the file and returns at once. A value that
// was not written yet is replaced by s.
func (l *Link) Send(s Signal) { publish(l.writes, s) }

// Watch polls the file every interval and publishes each new value on the
// link. Values written through the link are not published back.
func Watch(ctx context.Context, f File, interval time.Duration, logger *slog.Logger) *Link {
	l := &Link{signals: make(chan Signal, 1), writes: make(chan Signal, 1)}
	go func() {
		defer close(l.signals)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := Signal(-1)
		for {
			sig, err := f.Read()
			switch {
			case err == nil && sig != last:
				last = sig
				logger.Debug("takeover signal changed", "signal", sig)
				publish(l.signals, sig)
			case err != nil && !errors.Is(err, ErrNoSignal):
				logger.Warn("takeover signal unreadable", "error", err)
			}

			select {
			case <-ctx.Done():
				select {
				case s := <-l.writes:
					if err := f.Write(s); err != nil {
						logger.Error("failed to send takeover signal", "signal", s, "error", err)
					}
				default:
				}
				return
			case s := <-l.writes:
				if err := f.Write(s); err != nil {
					logger.Error("failed to send takeover signal", "signal", s, "error", err)
					continue
				}
				last = s
				logger.Info("sent takeover signal", "signal", s)
			case <-ticker.C:
			}
		}
	}()
	return l
}

func publish(ch chan Signal, s Signal) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
