package autopilot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/internal/input"
)

func TestCruise(t *testing.T) {
	c := NewCruise(10)
	tests := []struct {
		name  string
		speed float64
		want  input.AxisCommand
	}{
		{"standing", 0, input.AxisCommand{Throttle: 1}},
		{"close to target", 9, input.AxisCommand{Throttle: 0.25}},
		{"slightly over coasts", 10.5, input.AxisCommand{}},
		{"well over brakes", 14, input.AxisCommand{Brake: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := c.Command(Status{Speed: tt.speed})
			require.True(t, ok)
			assert.InDelta(t, tt.want.Throttle, cmd.Throttle, 1e-9)
			assert.InDelta(t, tt.want.Brake, cmd.Brake, 1e-9)
			assert.Zero(t, cmd.Steering)
		})
	}
}

func TestRemoteExpires(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRemote(time.Second)
	r.now = func() time.Time { return now }

	_, ok := r.Command(Status{})
	assert.False(t, ok, "nothing received yet")

	r.Set(input.AxisCommand{Steering: -0.3, Throttle: 0.5})
	cmd, ok := r.Command(Status{})
	require.True(t, ok)
	assert.Equal(t, -0.3, cmd.Steering)

	now = now.Add(1500 * time.Millisecond)
	_, ok = r.Command(Status{})
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	c, err := New(Config{Mode: "cruise", TargetSpeed: 5})
	require.NoError(t, err)
	assert.Equal(t, "cruise", c.Name())

	c, err = New(Config{Mode: "Remote"})
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, c)

	_, err = New(Config{Mode: "warp"})
	assert.Error(t, err)
}
