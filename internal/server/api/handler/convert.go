package handler

import (
	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/input"
	"github.com/Alia5/egodrive/internal/session"
	"github.com/Alia5/egodrive/vehicle"
)

func toDevice(c input.DeviceConnection) apitypes.Device {
	return apitypes.Device{
		Kind:          c.Kind.String(),
		State:         c.State.String(),
		Name:          c.Name,
		ForceFeedback: c.ForceFeedback,
		LastChecked:   c.LastCheckedTick,
	}
}

func toCamera(c vehicle.Camera) apitypes.Camera {
	return apitypes.Camera{Offset: c.Offset, Pitch: c.Pitch, Yaw: c.Yaw}
}

func toVehicleState(s *session.Snapshot) apitypes.VehicleState {
	out := apitypes.VehicleState{
		Tick:      s.Tick,
		Governing: s.Governing.String(),
		Inputs: apitypes.Inputs{
			Steering:          s.Inputs.Steering,
			Throttle:          s.Inputs.Throttle,
			Brake:             s.Inputs.Brake,
			HandbrakeHeld:     s.Inputs.HandbrakeHeld,
			ReverseToggled:    s.Inputs.ReverseToggled,
			TurnSignalLeftOn:  s.Inputs.TurnSignalLeftOn,
			TurnSignalRightOn: s.Inputs.TurnSignalRightOn,
		},
		Camera:           toCamera(s.Camera),
		Speed:            s.Speed,
		AutopilotEngaged: s.AutopilotEngaged,
		AutopilotMode:    s.AutopilotMode,
		PedalsDefaulting: s.PedalsDefaulting,
		Takeover:         s.Takeover.String(),
		ReactionMillis:   s.LastReaction.Milliseconds(),
		NDRT: apitypes.NDRT{
			Loaded:   s.NDRT.Loaded,
			Started:  s.NDRT.Started,
			Complete: s.NDRT.Complete,
			Word:     s.NDRT.Word,
			Words:    s.NDRT.Words,
		},
		Messages: make([]apitypes.Message, 0, len(s.Messages)),
	}
	for _, m := range s.Messages {
		out.Messages = append(out.Messages, apitypes.Message{
			Key:     m.Key,
			Text:    m.Text,
			Color:   string(m.Color),
			Expires: m.Expires,
		})
	}
	return out
}
