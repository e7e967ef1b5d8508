package virtual_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
	"github.com/Alia5/egodrive/wheel"
	"github.com/Alia5/egodrive/wheel/virtual"
)

func TestDriverLifecycle(t *testing.T) {
	d := virtual.New(slog.Default())
	assert.False(t, d.IsConnected(0))
	_, ok := d.State(0)
	assert.False(t, ok)

	var forces []wheel.ForceState
	detach, err := d.Attach(0, func(f wheel.ForceState) { forces = append(forces, f) })
	require.NoError(t, err)

	_, err = d.Attach(0, nil)
	assert.ErrorIs(t, err, virtual.ErrAlreadyAttached)
	_, err = d.Attach(virtual.MaxDevices, nil)
	assert.Error(t, err)

	require.True(t, d.IsConnected(0))
	s, ok := d.State(0)
	require.True(t, ok)
	assert.Equal(t, wheel.DefaultingSample(), s, "untouched wheel reads as defaulting")

	name, err := d.FriendlyName(0)
	require.NoError(t, err)
	assert.Equal(t, "Virtual Wheel 0", name)
	assert.True(t, d.HasForceFeedback(0))

	fed := wheel.ReleasedSample()
	fed.LX = -32767
	d.Feed(0, fed)
	s, _ = d.State(0)
	assert.Equal(t, int32(0), s.LX, "visible only after Update")
	require.True(t, d.Update())
	s, _ = d.State(0)
	assert.Equal(t, int32(-32767), s.LX)

	require.NoError(t, d.PlaySpringForce(0, 0, 30, 100))
	require.NoError(t, d.PlaySpringForce(0, 0, 30, 100))
	require.NoError(t, d.StopSpringForce(0))
	assert.Equal(t, []wheel.ForceState{wheel.SpringForce(0, 30, 100), {}}, forces)

	detach()
	assert.False(t, d.IsConnected(0))
	_, err = d.FriendlyName(0)
	assert.Error(t, err)
}

func TestStreamHandler(t *testing.T) {
	d := virtual.New(slog.Default())
	h := virtual.StreamHandler(d)

	server, client := net.Pipe()
	defer client.Close()
	errc := make(chan error, 1)
	go func() {
		defer server.Close()
		errc <- h(server, &api.Request{Ctx: context.Background(), Params: map[string]string{"index": "1"}}, slog.Default())
	}()

	require.Eventually(t, func() bool { return d.IsConnected(1) }, time.Second, 5*time.Millisecond)

	s := wheel.ReleasedSample()
	s.LY = 0
	s.Buttons[4] = 1
	frame, err := s.MarshalBinary()
	require.NoError(t, err)
	_, err = client.Write(frame)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		d.Update()
		got, _ := d.State(1)
		return got.LY == 0 && got.Buttons[4] == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, d.PlaySpringForce(1, 0, 30, 100))
	buf := make([]byte, wheel.ForceStateSize)
	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, err = io.ReadFull(client, buf)
	require.NoError(t, err)
	var f wheel.ForceState
	require.NoError(t, f.UnmarshalBinary(buf))
	assert.Equal(t, wheel.SpringForce(0, 30, 100), f)

	require.NoError(t, client.Close())
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler did not return")
	}
	assert.False(t, d.IsConnected(1), "closing the stream unplugs the wheel")
}

func TestStreamHandlerRejects(t *testing.T) {
	d := virtual.New(slog.Default())
	h := virtual.StreamHandler(d)

	tests := []struct {
		name   string
		index  string
		status int
	}{
		{"not a number", "abc", 400},
		{"out of range", "99", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, client := net.Pipe()
			defer client.Close()
			defer server.Close()
			err := h(server, &api.Request{Params: map[string]string{"index": tt.index}}, slog.Default())
			var ae apitypes.ApiError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.status, ae.Status)
		})
	}

	detach, err := d.Attach(2, nil)
	require.NoError(t, err)
	defer detach()
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()
	err = h(server, &api.Request{Params: map[string]string{"index": "2"}}, slog.Default())
	var ae apitypes.ApiError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 409, ae.Status)
}
