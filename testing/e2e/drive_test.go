package e2e_test

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/apiclient"
	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/autopilot"
	"github.com/Alia5/egodrive/internal/cmd"
	"github.com/Alia5/egodrive/internal/log"
	"github.com/Alia5/egodrive/internal/recorder"
	"github.com/Alia5/egodrive/internal/server/api"
	"github.com/Alia5/egodrive/vehicle"
	"github.com/Alia5/egodrive/wheel"

	_ "github.com/Alia5/egodrive/internal/registry" // Register all wheel drivers
)

func freeAddr(t testing.TB) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func virtualDrive(addr, recording string) cmd.Drive {
	d := cmd.Drive{
		TickRate: 5 * time.Millisecond,
		Inputs:   vehicle.DefaultInputConfig(),
		API: api.ServerConfig{
			Addr:        addr,
			ReadTimeout: time.Second,
		},
		Autopilot: autopilot.Config{Mode: "remote", RemoteTimeout: time.Second},
	}
	d.Hardware.Driver = "virtual"
	d.HMD.Driver = "none"
	d.Recorder = recorder.Config{Path: recording, FlushInterval: 10 * time.Millisecond}
	return d
}

// startDrive runs a drive session in the background until the test ends.
func startDrive(t *testing.T, d cmd.Drive) *apiclient.Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.StartDrive(ctx, log.Discard(), log.NewRaw(nil)) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("drive session did not stop")
		}
	})

	c := apiclient.New(d.API.Addr)
	require.Eventually(t, func() bool {
		_, err := c.Ping()
		return err == nil
	}, 5*time.Second, 10*time.Millisecond, "control API never came up")
	return c
}

func TestDrive_VirtualWheelGoverns(t *testing.T) {
	c := startDrive(t, virtualDrive(freeAddr(t), ""))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws, err := c.OpenWheelStream(ctx, 0)
	require.NoError(t, err)
	defer ws.Close()

	sample := wheel.ReleasedSample()
	sample.LX = wheel.AxisMax / 2
	require.Eventually(t, func() bool {
		if err := ws.Send(sample); err != nil {
			return false
		}
		st, err := c.VehicleState()
		return err == nil && st.Governing == "wheel" && st.Inputs.Steering > 0.2
	}, 5*time.Second, 20*time.Millisecond)

	devs, err := c.Devices()
	require.NoError(t, err)
	assert.Equal(t, "virtual", devs.Driver)
	var wheelDev *apitypes.Device
	for i := range devs.Devices {
		if devs.Devices[i].Kind == "wheel" {
			wheelDev = &devs.Devices[i]
		}
	}
	require.NotNil(t, wheelDev)
	assert.Equal(t, "available", wheelDev.State)
}

func TestDrive_RemoteAutopilot(t *testing.T) {
	c := startDrive(t, virtualDrive(freeAddr(t), ""))

	engaged := true
	_, err := c.AutopilotSet(&engaged, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	as, err := c.OpenAutopilotStream(ctx)
	require.NoError(t, err)
	defer as.Close()

	require.Eventually(t, func() bool {
		if err := as.Send(apitypes.AxisCommand{Steering: -0.5, Throttle: 0.3}); err != nil {
			return false
		}
		st, err := c.VehicleState()
		return err == nil && st.Governing == "autopilot" && st.Inputs.Steering < -0.2 && st.AutopilotEngaged
	}, 5*time.Second, 20*time.Millisecond)
}

func TestDrive_RecordsSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.db")
	d := virtualDrive(freeAddr(t), path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.StartDrive(ctx, log.Discard(), log.NewRaw(nil)) }()

	c := apiclient.New(d.API.Addr)
	require.Eventually(t, func() bool {
		st, err := c.VehicleState()
		return err == nil && st.Tick > 10
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("drive session did not stop")
	}

	db, err := recorder.Open(path)
	require.NoError(t, err)
	defer func() { _ = recorder.Close(db) }()
	sessions, err := recorder.ListSessions(db)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "virtual", sessions[0].Driver)
	assert.NotNil(t, sessions[0].EndedAt)
	assert.Greater(t, sessions[0].Ticks, int64(10))
}

// Benchmark_WheelToVehicle measures how long a wheel sample written to the
// control API takes to reach the vehicle state.
func Benchmark_WheelToVehicle(b *testing.B) {
	d := virtualDrive(freeAddr(b), "")
	d.TickRate = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.StartDrive(ctx, log.Discard(), log.NewRaw(nil)) }()

	c := apiclient.New(d.API.Addr)
	for range 50 {
		if _, err := c.Ping(); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	ws, err := c.OpenWheelStream(ctx, 0)
	if err != nil {
		b.Fatalf("OpenWheelStream failed: %v", err)
	}
	defer ws.Close()

	sample := wheel.ReleasedSample()
	sign := int32(1)
	for b.Loop() {
		sample.LX = sign * wheel.AxisMax / 2
		if err := ws.Send(sample); err != nil {
			b.Fatalf("Send failed: %v", err)
		}
		deadline := time.Now().Add(time.Second)
		for {
			st, err := c.VehicleState()
			if err == nil && st.Inputs.Steering*float64(sign) > 0.2 {
				break
			}
			if time.Now().After(deadline) {
				b.Fatalf("sample never reached the vehicle")
			}
		}
		sign = -sign
	}
}
