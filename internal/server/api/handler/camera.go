package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/internal/session"
	"github.com/Alia5/egodrive/vehicle"
)

// Camera returns a handler nudging the driver camera one step.
func Camera(s *session.Session) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		dir, ok := vehicle.ParseCameraDirection(req.Params["direction"])
		if !ok {
			return apierror.ErrBadRequest(fmt.Sprintf("unknown camera direction: %s", req.Params["direction"]))
		}
		out := apitypes.CameraResponse{Direction: dir.String()}
		err := s.Do(req.Ctx, func(s *session.Session) error {
			if err := s.Relay().CameraNudge(dir); err != nil {
				return err
			}
			if v := s.Vehicle(); v != nil {
				out.Camera = toCamera(v.Camera())
			}
			return nil
		})
		if err != nil {
			return sessionError(err)
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// CameraLook returns a handler rotating the driver camera by mouse deltas.
func CameraLook(s *session.Session) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var body apitypes.CameraLookRequest
		if err := json.Unmarshal([]byte(req.Payload), &body); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		out := apitypes.CameraResponse{Direction: "look"}
		err := s.Do(req.Ctx, func(s *session.Session) error {
			if err := s.Relay().MouseLookUp(body.Pitch); err != nil {
				return err
			}
			if err := s.Relay().MouseTurn(body.Yaw); err != nil {
				return err
			}
			if v := s.Vehicle(); v != nil {
				out.Camera = toCamera(v.Camera())
			}
			return nil
		})
		if err != nil {
			return sessionError(err)
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
