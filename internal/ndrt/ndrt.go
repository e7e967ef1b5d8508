// Package ndrt runs the non-driving related reading task: a text is revealed
// word by word at a fixed words-per-minute rate while the autopilot drives.
package ndrt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrEmptyText is returned when a task has no words.
var ErrEmptyText = errors.New("reading task text is empty")

// Config configures the reading task.
type Config struct {
	TextFile    string `help:"Text file read aloud during the task" env:"EGODRIVE_NDRT_TEXT_FILE"`
	WPM         int    `help:"Reading rate in words per minute" default:"180" env:"EGODRIVE_NDRT_WPM"`
	TTS         bool   `help:"Speak the text with text-to-speech" default:"true" env:"EGODRIVE_NDRT_TTS"`
	Synthesizer string `help:"Text-to-speech program (espeak, espeak-ng, say, none)" default:"espeak" env:"EGODRIVE_NDRT_SYNTHESIZER"`
}

// Task is one reading task. It is advanced by the tick loop.
type Task struct {
	words    []string
	interval time.Duration
	elapsed  time.Duration
	started  bool
	done     bool
}

// New returns a task over text read at wpm words per minute.
func New(text string, wpm int) (*Task, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}
	if wpm <= 0 {
		return nil, fmt.Errorf("invalid reading rate %d wpm", wpm)
	}
	return &Task{
		words:    words,
		interval: time.Minute / time.Duration(wpm),
	}, nil
}

// Load reads the task text from path.
func Load(path string, wpm int) (*Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task text: %w", err)
	}
	return New(string(b), wpm)
}

// Start begins the task from the first word. Starting a running task restarts it.
func (t *Task) Start() {
	t.started = true
	t.done = false
	t.elapsed = 0
}

// Started reports whether the task has been started.
func (t *Task) Started() bool { return t.started }

// Tick advances the task by dt and reports whether it completed on this call.
func (t *Task) Tick(dt time.Duration) bool {
	if !t.started || t.done {
		return false
	}
	t.elapsed += dt
	if t.elapsed >= t.Duration() {
		t.done = true
		return true
	}
	return false
}

// Word returns the index of the word being read, or -1 before the start.
func (t *Task) Word() int {
	if !t.started {
		return -1
	}
	i := int(t.elapsed / t.interval)
	if i >= len(t.words) {
		i = len(t.words) - 1
	}
	return i
}

// Complete reports whether every word has been read.
func (t *Task) Complete() bool { return t.done }

// Text returns the full text.
func (t *Task) Text() string { return strings.Join(t.words, " ") }

// Words returns the number of words.
func (t *Task) Words() int { return len(t.words) }

// Duration is how long reading the whole text takes.
func (t *Task) Duration() time.Duration { return t.interval * time.Duration(len(t.words)) }
