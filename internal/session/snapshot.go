package session

import (
	"time"

	"github.com/Alia5/egodrive/internal/input"
	"github.com/Alia5/egodrive/internal/notify"
	"github.com/Alia5/egodrive/internal/takeover"
	"github.com/Alia5/egodrive/vehicle"
)

// NDRTStatus is the progress of the reading task.
type NDRTStatus struct {
	Loaded   bool
	Started  bool
	Complete bool
	Word     int
	Words    int
}

// Snapshot is an immutable copy of the session state published after every
// tick.
type Snapshot struct {
	Tick             uint64
	Time             time.Time
	Driver           string
	Governing        input.ControlSource
	Inputs           vehicle.UserInputs
	Camera           vehicle.Camera
	Speed            float64
	AutopilotEngaged bool
	AutopilotMode    string
	PedalsDefaulting bool
	HMD              input.DeviceConnection
	Wheel            input.DeviceConnection
	SpringPlaying    bool
	Takeover         takeover.Phase
	LastReaction     time.Duration
	NDRT             NDRTStatus
	Messages         []notify.Message
}
