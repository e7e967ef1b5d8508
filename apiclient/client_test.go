package apiclient_test

import (
	"context"
	"errors"
	"testing"

	apiclient "github.com/Alia5/egodrive/apiclient"
	apitypes "github.com/Alia5/egodrive/apitypes"

	"github.com/stretchr/testify/assert"
)

// testClient constructs a client backed by a simple in-memory responder.
// responses maps path patterns (before path param substitution) to raw JSON payloads.
// If err is non-nil, every request returns that error, simulating dial failures.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	engage := true
	tests := []struct {
		name       string
		setup      func(responses map[string]string) (err error)
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name: "ping",
			setup: func(responses map[string]string) error {
				responses["ping"] = `{"server":"egodrive","version":"dev"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, &apitypes.PingResponse{Server: "egodrive", Version: "dev"}, got)
			},
		},
		{
			name: "vehicle state",
			setup: func(responses map[string]string) error {
				responses["vehicle/state"] = `{"tick":12,"governing":"wheel","inputs":{"steering":0.5,"throttle":0,"brake":0,"handbrakeHeld":false,"reverseToggled":false,"turnSignalLeftOn":false,"turnSignalRightOn":false},"camera":{"offset":[0,0,0],"pitch":0,"yaw":0},"speed":3,"autopilotEngaged":false,"pedalsDefaulting":false,"takeover":"manual","ndrt":{"loaded":false,"started":false,"complete":false,"word":-1,"words":0},"messages":[]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.VehicleState() },
			assertFunc: func(t *testing.T, got any) {
				st := got.(*apitypes.VehicleState)
				assert.Equal(t, uint64(12), st.Tick)
				assert.Equal(t, "wheel", st.Governing)
				assert.Equal(t, 0.5, st.Inputs.Steering)
				assert.Equal(t, "manual", st.Takeover)
			},
		},
		{
			name: "devices",
			setup: func(responses map[string]string) error {
				responses["devices"] = `{"driver":"sdl","devices":[{"kind":"hmd","state":"unavailable","lastCheckedTick":3},{"kind":"wheel","state":"available","name":"G920","forceFeedback":true,"lastCheckedTick":3}]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Devices() },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.DevicesResponse)
				assert.Equal(t, "sdl", resp.Driver)
				assert.Len(t, resp.Devices, 2)
				assert.True(t, resp.Devices[1].ForceFeedback)
			},
		},
		{
			name: "autopilot set",
			setup: func(responses map[string]string) error {
				responses["autopilot/set"] = `{"engaged":true,"mode":"remote"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.AutopilotSet(&engage, nil) },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, &apitypes.AutopilotResponse{Engaged: true, Mode: "remote"}, got)
			},
		},
		{
			name: "takeover error structured",
			setup: func(responses map[string]string) error {
				responses["takeover/{action}"] = `{"status":409,"title":"Conflict","detail":"no reading task loaded"}`
				return nil
			},
			call:    func(c *apiclient.Client) (any, error) { return c.Takeover("start-ndrt") },
			wantErr: "409 Conflict: no reading task loaded",
		},
		{
			name: "speak",
			setup: func(responses map[string]string) error {
				responses["speak"] = `{"queued":true}`
				return nil
			},
			call:       func(c *apiclient.Client) (any, error) { return c.Speak("hello", 0) },
			assertFunc: func(t *testing.T, got any) { assert.True(t, got.(*apitypes.SpeakResponse).Queued) },
		},
		{
			name: "camera",
			setup: func(responses map[string]string) error {
				responses["camera/{direction}"] = `{"direction":"up","camera":{"offset":[0,0,1],"pitch":0,"yaw":0}}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Camera("up") },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, [3]float64{0, 0, 1}, got.(*apitypes.CameraResponse).Camera.Offset)
			},
		},
		{
			name: "camera look",
			setup: func(responses map[string]string) error {
				responses["camera/look"] = `{"direction":"look","camera":{"offset":[0,0,0],"pitch":-3,"yaw":4}}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.CameraLook(3, 4) },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, apitypes.Camera{Pitch: -3, Yaw: 4}, got.(*apitypes.CameraResponse).Camera)
			},
		},
		{
			name:    "transport failure",
			setup:   func(responses map[string]string) error { return errors.New("dial fail") },
			call:    func(c *apiclient.Client) (any, error) { return c.Devices() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			setup:   func(responses map[string]string) error { return nil },
			call:    func(c *apiclient.Client) (any, error) { return c.VehicleState() },
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			errInject := error(nil)
			if tt.setup != nil {
				if e := tt.setup(responses); e != nil {
					errInject = e
				}
			}
			c := testClient(responses, errInject)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	c := apiclient.WithTransport(apiclient.NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.DevicesCtx(ctx)
	assert.Error(t, err)
}

func TestMalformedJSON(t *testing.T) {
	c := testClient(map[string]string{"devices": `{"driver":`}, nil)
	_, err := c.Devices()
	assert.ErrorContains(t, err, "decode")
}
