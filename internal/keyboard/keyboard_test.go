package keyboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/internal/input"
	egolog "github.com/Alia5/egodrive/internal/log"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Key
	}{
		{"letters", "wA", []Key{runeKey('w'), runeKey('a')}},
		{"arrows", "\x1b[A\x1b[D\x1bOC", []Key{specialKey(KeyUp), specialKey(KeyLeft), specialKey(KeyRight)}},
		{"lone escape", "\x1b", []Key{specialKey(KeyEsc)}},
		{"unknown sequence", "\x1b[Zx", []Key{specialKey(KeyEsc), runeKey('['), runeKey('z'), runeKey('x')}},
		{"ctrl-c", "\x03", []Key{specialKey(KeyCtrlC)}},
		{"space and control bytes", " \r\n", []Key{runeKey(' ')}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode([]byte(tt.in)))
		})
	}
}

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()
	assert.Equal(t, Event{Kind: KindAxis, Name: input.BindSteer, Value: -1}, km[specialKey(KeyLeft)])
	assert.Equal(t, km[runeKey('w')], km[specialKey(KeyUp)])
	assert.Equal(t, Event{Kind: KindAction, Name: input.BindToggleReverse}, km[runeKey('r')])
	assert.Equal(t, Event{Kind: KindCommand, Name: CommandQuit}, km[specialKey(KeyCtrlC)])
}

func TestState(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewState(100*time.Millisecond, 0)

	s.Axis(input.BindThrottle, 1, now)
	assert.True(t, s.Press(input.BindHoldHandbrake, now))
	assert.False(t, s.Press(input.BindHoldHandbrake, now.Add(50*time.Millisecond)), "repeat")

	now = now.Add(80 * time.Millisecond)
	assert.Equal(t, map[string]float64{input.BindThrottle: 1}, s.AxisValues(now))
	assert.Empty(t, s.Released(now))

	now = now.Add(30 * time.Millisecond)
	assert.Equal(t, map[string]float64{input.BindThrottle: 0}, s.AxisValues(now), "expired axis reports zero once")
	assert.Empty(t, s.AxisValues(now))
	assert.Empty(t, s.Released(now), "handbrake was repeated")

	now = now.Add(50 * time.Millisecond)
	assert.Equal(t, []string{input.BindHoldHandbrake}, s.Released(now))
	assert.True(t, s.Press(input.BindHoldHandbrake, now))
}

func TestState_RepeatDelay(t *testing.T) {
	start := time.Unix(0, 0)
	at := func(ms int) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }
	s := NewState(150*time.Millisecond, 700*time.Millisecond)

	s.Axis(input.BindSteer, -1, at(0))
	assert.True(t, s.Press(input.BindToggleReverse, at(0)))

	// nothing arrives until the terminal starts repeating
	assert.Equal(t, map[string]float64{input.BindSteer: -1}, s.AxisValues(at(600)))
	assert.Empty(t, s.Released(at(600)))

	for ms := 620; ms <= 1000; ms += 30 {
		s.Axis(input.BindSteer, -1, at(ms))
		assert.False(t, s.Press(input.BindToggleReverse, at(ms)), "repeat at %dms", ms)
		assert.Equal(t, map[string]float64{input.BindSteer: -1}, s.AxisValues(at(ms+10)))
		assert.Empty(t, s.Released(at(ms+10)))
	}

	// after repeating, the short hold applies
	assert.Equal(t, map[string]float64{input.BindSteer: 0}, s.AxisValues(at(1160)))
	assert.Equal(t, []string{input.BindToggleReverse}, s.Released(at(1160)))
}

func TestState_SingleTap(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewState(150*time.Millisecond, 700*time.Millisecond)

	assert.True(t, s.Press(input.BindHoldHandbrake, now))
	assert.Empty(t, s.Released(now.Add(700*time.Millisecond)))
	assert.Equal(t, []string{input.BindHoldHandbrake}, s.Released(now.Add(701*time.Millisecond)))
}

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader("wx\x1b[Cp"), DefaultKeymap(), egolog.Discard())
	require.NoError(t, r.Run(context.Background()))

	var got []Event
	for ev := range r.Events() {
		got = append(got, ev)
	}
	assert.Equal(t, []Event{
		{Kind: KindAxis, Name: input.BindThrottle, Value: 1},
		{Kind: KindAxis, Name: input.BindSteer, Value: 1},
		{Kind: KindCommand, Name: CommandResume},
	}, got)
}
