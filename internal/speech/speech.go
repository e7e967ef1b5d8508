// Package speech reads text aloud on a worker goroutine.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Utterance is one piece of text to speak at a given rate.
type Utterance struct {
	Text string
	WPM  int
}

// Synthesizer speaks an utterance and returns when it is done.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// Null drops every utterance.
type Null struct{}

func (Null) Speak(context.Context, Utterance) error { return nil }

// Command runs an external text-to-speech program.
type Command struct {
	Program string
}

// Args returns the command line arguments for u.
func (c Command) Args(u Utterance) []string {
	switch c.Program {
	case "say":
		if u.WPM > 0 {
			return []string{"-r", strconv.Itoa(u.WPM), u.Text}
		}
		return []string{u.Text}
	default:
		if u.WPM > 0 {
			return []string{"-s", strconv.Itoa(u.WPM), u.Text}
		}
		return []string{u.Text}
	}
}

func (c Command) Speak(ctx context.Context, u Utterance) error {
	out, err := exec.CommandContext(ctx, c.Program, c.Args(u)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c.Program, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NewSynthesizer returns the synthesizer named by name: "none", or a program
// such as espeak, espeak-ng or say that must be on PATH.
func NewSynthesizer(name string) (Synthesizer, error) {
	switch name {
	case "", "none":
		return Null{}, nil
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("text-to-speech program %q: %w", name, err)
	}
	return Command{Program: name}, nil
}

// Speaker queues utterances for a synthesizer.
type Speaker struct {
	queue  chan Utterance
	synth  Synthesizer
	logger *slog.Logger
}

// NewSpeaker returns a speaker holding at most size pending utterances.
func NewSpeaker(synth Synthesizer, size int, logger *slog.Logger) *Speaker {
	return &Speaker{
		queue:  make(chan Utterance, size),
		synth:  synth,
		logger: logger.With("component", "speech"),
	}
}

// Say queues u without blocking. It returns false when the queue is full.
func (s *Speaker) Say(u Utterance) bool {
	select {
	case s.queue <- u:
		return true
	default:
		s.logger.Warn("speech queue full, dropping utterance")
		return false
	}
}

// Run speaks queued utterances until ctx is cancelled.
func (s *Speaker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-s.queue:
			s.logger.Debug("speaking", "words", len(strings.Fields(u.Text)), "wpm", u.WPM)
			if err := s.synth.Speak(ctx, u); err != nil && ctx.Err() == nil {
				s.logger.Error("text-to-speech failed", "error", err)
			}
		}
	}
}
