// Package recorder stores a per-tick log of a drive session in SQLite. The
// tick loop hands records over without blocking; a writer goroutine batches
// them into the database.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// Config configures the recorder.
type Config struct {
	Path          string        `help:"SQLite file for session recordings; auto uses the data directory, empty disables recording" default:"" env:"EGODRIVE_RECORDER_PATH"`
	BatchSize     int           `help:"Records written per insert" default:"500" env:"EGODRIVE_RECORDER_BATCH_SIZE"`
	FlushInterval time.Duration `help:"Maximum time records wait before being written" default:"1s" env:"EGODRIVE_RECORDER_FLUSH_INTERVAL"`
}

// Recorder writes one session.
type Recorder struct {
	db      *gorm.DB
	cfg     Config
	session SessionRecord
	ticks   chan TickRecord
	events  chan EventRecord
	logger  *slog.Logger

	written atomic.Int64
	dropped atomic.Int64
}

// New creates the session row and returns its recorder.
func New(db *gorm.DB, cfg Config, session SessionRecord, logger *slog.Logger) (*Recorder, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Recorder{
		db:      db,
		cfg:     cfg,
		session: session,
		ticks:   make(chan TickRecord, cfg.BatchSize*4),
		events:  make(chan EventRecord, 256),
		logger:  logger.With("component", "recorder", "session", session.ID),
	}, nil
}

// SessionID returns the id of the recorded session.
func (r *Recorder) SessionID() uint { return r.session.ID }

// Dropped returns how many records did not fit in the queue.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// RecordTick queues a tick record and reports whether it was accepted.
func (r *Recorder) RecordTick(t TickRecord) bool {
	t.SessionID = r.session.ID
	select {
	case r.ticks <- t:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// RecordEvent queues an event record and reports whether it was accepted.
func (r *Recorder) RecordEvent(e EventRecord) bool {
	e.SessionID = r.session.ID
	select {
	case r.events <- e:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Run writes queued records until ctx is cancelled, then flushes what is left
// and closes the session row.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]TickRecord, 0, r.cfg.BatchSize)
	var events []EventRecord

	flush := func() {
		if len(batch) > 0 {
			if err := r.db.CreateInBatches(&batch, r.cfg.BatchSize).Error; err != nil {
				r.logger.Error("writing tick records failed", "count", len(batch), "error", err)
			} else {
				r.written.Add(int64(len(batch)))
			}
			batch = batch[:0]
		}
		if len(events) > 0 {
			if err := r.db.Create(&events).Error; err != nil {
				r.logger.Error("writing event records failed", "count", len(events), "error", err)
			}
			events = nil
		}
	}

	for {
		select {
		case t := <-r.ticks:
			batch = append(batch, t)
			if len(batch) >= r.cfg.BatchSize {
				flush()
			}
		case e := <-r.events:
			events = append(events, e)
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			r.drain(&batch, &events)
			flush()
			return r.finish()
		}
	}
}

func (r *Recorder) drain(batch *[]TickRecord, events *[]EventRecord) {
	for {
		select {
		case t := <-r.ticks:
			*batch = append(*batch, t)
		case e := <-r.events:
			*events = append(*events, e)
		default:
			return
		}
	}
}

func (r *Recorder) finish() error {
	end := time.Now()
	err := r.db.Model(&SessionRecord{}).Where("id = ?", r.session.ID).Updates(map[string]any{
		"ended_at": end,
		"ticks":    r.written.Load(),
		"dropped":  r.dropped.Load(),
	}).Error
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	r.logger.Info("session recorded", "ticks", r.written.Load(), "dropped", r.dropped.Load())
	return nil
}
