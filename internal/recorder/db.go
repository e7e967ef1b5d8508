package recorder

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SessionRecord is one drive session.
type SessionRecord struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	StartedAt time.Time  `json:"startedAt" gorm:"index:idx_session_started"`
	EndedAt   *time.Time `json:"endedAt"`
	Driver    string     `json:"driver" gorm:"size:32"`
	Wheel     string     `json:"wheel" gorm:"size:127"`
	HMD       string     `json:"hmd" gorm:"size:127"`
	Ticks     int64      `json:"ticks"`
	Dropped   int64      `json:"dropped"`
}

// TickRecord is the arbitration outcome of one tick.
type TickRecord struct {
	ID         uint      `json:"-" gorm:"primarykey"`
	SessionID  uint      `json:"sessionId" gorm:"index:idx_tick_session"`
	Tick       uint64    `json:"tick"`
	Time       time.Time `json:"time"`
	Governing  string    `json:"governing" gorm:"size:16"`
	Steering   float64   `json:"steering"`
	Throttle   float64   `json:"throttle"`
	Brake      float64   `json:"brake"`
	Speed      float64   `json:"speed"`
	Defaulting bool      `json:"defaulting"`
	Errors     int       `json:"errors"`
}

// EventRecord is a device, take-over or reading task event.
type EventRecord struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_event_session"`
	Tick      uint64    `json:"tick"`
	Time      time.Time `json:"time"`
	Kind      string    `json:"kind" gorm:"size:32"`
	Detail    string    `json:"detail" gorm:"size:255"`
}

// Models lists the tables of a recording database.
var Models = []any{
	&SessionRecord{},
	&TickRecord{},
	&EventRecord{},
}

// Open opens the recording database at path and migrates it. An empty path
// opens a private in-memory database.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open recording database: %w", err)
	}
	if path == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// every connection to file::memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("migrate recording database: %w", err)
	}
	return db, nil
}

// Close closes the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListSessions returns every recorded session, newest first.
func ListSessions(db *gorm.DB) ([]SessionRecord, error) {
	var out []SessionRecord
	if err := db.Order("started_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// Events returns the events of a session in order.
func Events(db *gorm.DB, sessionID uint) ([]EventRecord, error) {
	var out []EventRecord
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// TickCount returns the number of stored ticks of a session.
func TickCount(db *gorm.DB, sessionID uint) (int64, error) {
	var n int64
	if err := db.Model(&TickRecord{}).Where("session_id = ?", sessionID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count ticks: %w", err)
	}
	return n, nil
}
