// Package notify keeps transient on-screen messages, deduplicated by key.
package notify

import (
	"sort"
	"sync"
	"time"
)

// Color of a message as rendered by the HUD.
type Color string

const (
	White  Color = "white"
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
)

// Message is a transient on-screen message.
type Message struct {
	Key      string        `json:"key"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"-"`
	Color    Color         `json:"color"`
	Expires  time.Time     `json:"expires"`
}

// Board holds the active messages. Safe for concurrent use.
type Board struct {
	mu   sync.Mutex
	msgs map[string]Message
	now  func() time.Time
}

// NewBoard returns an empty board using the wall clock.
func NewBoard() *Board { return NewBoardWithClock(time.Now) }

// NewBoardWithClock returns an empty board using now as its clock.
func NewBoardWithClock(now func() time.Time) *Board {
	return &Board{msgs: make(map[string]Message), now: now}
}

// Show posts m. It returns false if a message with the same key is still
// showing, in which case nothing changes.
func (b *Board) Show(m Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if cur, ok := b.msgs[m.Key]; ok && now.Before(cur.Expires) {
		return false
	}
	m.Expires = now.Add(m.Duration)
	b.msgs[m.Key] = m
	return true
}

// Dismiss removes the message with key.
func (b *Board) Dismiss(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.msgs, key)
}

// Active returns unexpired messages ordered by expiry and drops expired ones.
func (b *Board) Active() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	out := make([]Message, 0, len(b.msgs))
	for k, m := range b.msgs {
		if !now.Before(m.Expires) {
			delete(b.msgs, k)
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expires.Before(out[j].Expires) })
	return out
}
