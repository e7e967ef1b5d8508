package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/Alia5/egodrive/apitypes"
)

// Client provides a high-level interface to the egodrive control API, handling
// request formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the control API.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// VehicleState returns the state published by the session's last tick.
func (c *Client) VehicleState() (*apitypes.VehicleState, error) {
	return c.VehicleStateCtx(context.Background())
}

func (c *Client) VehicleStateCtx(ctx context.Context) (*apitypes.VehicleState, error) {
	const path = "vehicle/state"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.VehicleState](raw)
}

// Devices lists the head-mounted display and wheel as seen by the device monitor.
func (c *Client) Devices() (*apitypes.DevicesResponse, error) {
	return c.DevicesCtx(context.Background())
}

func (c *Client) DevicesCtx(ctx context.Context) (*apitypes.DevicesResponse, error) {
	const path = "devices"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.DevicesResponse](raw)
}

// AutopilotSet engages or disengages the autopilot and, for a remote
// autopilot, pushes a command. Nil fields are left alone.
func (c *Client) AutopilotSet(engaged *bool, cmd *apitypes.AxisCommand) (*apitypes.AutopilotResponse, error) {
	return c.AutopilotSetCtx(context.Background(), engaged, cmd)
}

func (c *Client) AutopilotSetCtx(ctx context.Context, engaged *bool, cmd *apitypes.AxisCommand) (*apitypes.AutopilotResponse, error) {
	const path = "autopilot/set"
	payload, err := json.Marshal(apitypes.AutopilotSetRequest{Engaged: engaged, Command: cmd})
	if err != nil {
		return nil, fmt.Errorf("marshal autopilot request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payload), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.AutopilotResponse](raw)
}

// Takeover runs one take-over action: "start-ndrt", "issue" or "resume".
func (c *Client) Takeover(action string) (*apitypes.TakeoverResponse, error) {
	return c.TakeoverCtx(context.Background(), action)
}

func (c *Client) TakeoverCtx(ctx context.Context, action string) (*apitypes.TakeoverResponse, error) {
	const path = "takeover/{action}"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"action": action})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.TakeoverResponse](raw)
}

// Speak queues text for the text-to-speech voice. A zero wpm uses the
// server's reading speed.
func (c *Client) Speak(text string, wpm int) (*apitypes.SpeakResponse, error) {
	return c.SpeakCtx(context.Background(), text, wpm)
}

func (c *Client) SpeakCtx(ctx context.Context, text string, wpm int) (*apitypes.SpeakResponse, error) {
	const path = "speak"
	raw, err := c.transport.DoCtx(ctx, path, apitypes.SpeakRequest{Text: text, WPM: wpm}, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.SpeakResponse](raw)
}

// Camera nudges the driver camera one step in direction.
func (c *Client) Camera(direction string) (*apitypes.CameraResponse, error) {
	return c.CameraCtx(context.Background(), direction)
}

func (c *Client) CameraCtx(ctx context.Context, direction string) (*apitypes.CameraResponse, error) {
	const path = "camera/{direction}"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"direction": direction})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.CameraResponse](raw)
}

// CameraLook rotates the driver camera by raw mouse deltas.
func (c *Client) CameraLook(pitch, yaw float64) (*apitypes.CameraResponse, error) {
	return c.CameraLookCtx(context.Background(), pitch, yaw)
}

func (c *Client) CameraLookCtx(ctx context.Context, pitch, yaw float64) (*apitypes.CameraResponse, error) {
	const path = "camera/look"
	raw, err := c.transport.DoCtx(ctx, path, apitypes.CameraLookRequest{Pitch: pitch, Yaw: yaw}, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.CameraResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
