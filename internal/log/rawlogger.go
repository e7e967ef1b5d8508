package log

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// RawLogger dumps raw device frames, one hex line per frame.
type RawLogger interface {
	Log(tag string, data []byte)
}

type rawLogger struct {
	w   io.Writer
	now func() time.Time
	mu  sync.Mutex
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// OpenRaw picks the raw frame sink: path when set, stdout at trace level,
// otherwise nothing. The closer is nil unless a file was opened.
func OpenRaw(path string, level slog.Level) (RawLogger, io.Closer, error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open raw log: %w", err)
		}
		return NewRaw(f), f, nil
	}
	if level <= LevelTrace {
		return NewRaw(os.Stdout), nil, nil
	}
	return NewRaw(nil), nil, nil
}

// Log writes "<time> <tag> <n> bytes: <hex>".
func (r *rawLogger) Log(tag string, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	var line bytes.Buffer
	fmt.Fprintf(&line, "%s %s %d bytes:", r.now().Format("15:04:05.000"), tag, len(data))
	const hexdigits = "0123456789abcdef"
	for _, b := range data {
		line.WriteByte(' ')
		line.WriteByte(hexdigits[b>>4])
		line.WriteByte(hexdigits[b&0x0f])
	}
	line.WriteByte('\n')

	r.mu.Lock()
	_, _ = r.w.Write(line.Bytes())
	r.mu.Unlock()
}
