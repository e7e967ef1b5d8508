// Package apitypes holds the JSON bodies of the control API.
package apitypes

import (
	"fmt"
	"time"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type Device struct {
	Kind          string `json:"kind"`
	State         string `json:"state"`
	Name          string `json:"name,omitempty"`
	ForceFeedback bool   `json:"forceFeedback,omitempty"`
	LastChecked   uint64 `json:"lastCheckedTick"`
}

type DevicesResponse struct {
	Driver  string   `json:"driver"`
	Devices []Device `json:"devices"`
}

type Inputs struct {
	Steering          float64 `json:"steering"`
	Throttle          float64 `json:"throttle"`
	Brake             float64 `json:"brake"`
	HandbrakeHeld     bool    `json:"handbrakeHeld"`
	ReverseToggled    bool    `json:"reverseToggled"`
	TurnSignalLeftOn  bool    `json:"turnSignalLeftOn"`
	TurnSignalRightOn bool    `json:"turnSignalRightOn"`
}

type Camera struct {
	Offset [3]float64 `json:"offset"`
	Pitch  float64    `json:"pitch"`
	Yaw    float64    `json:"yaw"`
}

type NDRT struct {
	Loaded   bool `json:"loaded"`
	Started  bool `json:"started"`
	Complete bool `json:"complete"`
	Word     int  `json:"word"`
	Words    int  `json:"words"`
}

type Message struct {
	Key     string    `json:"key"`
	Text    string    `json:"text"`
	Color   string    `json:"color"`
	Expires time.Time `json:"expires"`
}

type VehicleState struct {
	Tick             uint64    `json:"tick"`
	Governing        string    `json:"governing"`
	Inputs           Inputs    `json:"inputs"`
	Camera           Camera    `json:"camera"`
	Speed            float64   `json:"speed"`
	AutopilotEngaged bool      `json:"autopilotEngaged"`
	AutopilotMode    string    `json:"autopilotMode,omitempty"`
	PedalsDefaulting bool      `json:"pedalsDefaulting"`
	Takeover         string    `json:"takeover"`
	ReactionMillis   int64     `json:"reactionMs,omitempty"`
	NDRT             NDRT      `json:"ndrt"`
	Messages         []Message `json:"messages"`
}

// AxisCommand is one autopilot command. Values outside the axis ranges are
// clamped by the vehicle.
type AxisCommand struct {
	Steering float64 `json:"steering"`
	Throttle float64 `json:"throttle"`
	Brake    float64 `json:"brake"`
}

type AutopilotSetRequest struct {
	Engaged *bool        `json:"engaged,omitempty"`
	Command *AxisCommand `json:"command,omitempty"`
}

type AutopilotResponse struct {
	Engaged bool   `json:"engaged"`
	Mode    string `json:"mode"`
}

type TakeoverResponse struct {
	Action string `json:"action"`
	Phase  string `json:"phase"`
}

type SpeakRequest struct {
	Text string `json:"text"`
	WPM  int    `json:"wpm,omitempty"`
}

type SpeakResponse struct {
	Queued bool `json:"queued"`
}

type CameraResponse struct {
	Direction string `json:"direction"`
	Camera    Camera `json:"camera"`
}

// CameraLookRequest carries raw mouse deltas for the camera/look route.
type CameraLookRequest struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}
