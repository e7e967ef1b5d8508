package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
	"github.com/Alia5/egodrive/internal/session"
)

// VehicleState returns a handler reporting the state published by the last tick.
func VehicleState(s *session.Session) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(toVehicleState(s.Snapshot()))
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// Devices returns a handler listing the monitored devices.
func Devices(s *session.Session) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		snap := s.Snapshot()
		b, err := json.Marshal(apitypes.DevicesResponse{
			Driver:  snap.Driver,
			Devices: []apitypes.Device{toDevice(snap.HMD), toDevice(snap.Wheel)},
		})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
