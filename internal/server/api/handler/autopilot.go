package handler

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/autopilot"
	"github.com/Alia5/egodrive/internal/input"
	"github.com/Alia5/egodrive/internal/server/api"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/internal/session"
)

func remote(s *session.Session) (*autopilot.Remote, error) {
	r, ok := s.Autopilot().(*autopilot.Remote)
	if !ok {
		mode := "none"
		if ap := s.Autopilot(); ap != nil {
			mode = ap.Name()
		}
		return nil, apierror.ErrConflict(fmt.Sprintf("autopilot mode %s does not accept commands", mode))
	}
	return r, nil
}

func toCommand(c apitypes.AxisCommand) input.AxisCommand {
	return input.AxisCommand{Steering: c.Steering, Throttle: c.Throttle, Brake: c.Brake}
}

// AutopilotSet returns a handler that engages or disengages the autopilot
// and feeds commands to a remote autopilot.
func AutopilotSet(s *session.Session) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var body apitypes.AutopilotSetRequest
		if err := json.Unmarshal([]byte(req.Payload), &body); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		if body.Engaged == nil && body.Command == nil {
			return apierror.ErrBadRequest("nothing to set")
		}
		if body.Command != nil {
			r, err := remote(s)
			if err != nil {
				return err
			}
			r.Set(toCommand(*body.Command))
		}

		var out apitypes.AutopilotResponse
		err := s.Do(req.Ctx, func(s *session.Session) error {
			if body.Engaged != nil {
				if err := s.SetAutopilot(*body.Engaged); err != nil {
					return err
				}
			}
			out.Engaged = s.Relay().AutopilotEngaged()
			return nil
		})
		if err != nil {
			return sessionError(err)
		}
		if ap := s.Autopilot(); ap != nil {
			out.Mode = ap.Name()
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// AutopilotStream returns a stream handler reading newline-delimited JSON
// axis commands into the remote autopilot until the client disconnects.
func AutopilotStream(s *session.Session) api.StreamHandlerFunc {
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		r, err := remote(s)
		if err != nil {
			return err
		}
		sc := bufio.NewScanner(conn)
		n := 0
		for sc.Scan() {
			if len(sc.Bytes()) == 0 {
				continue
			}
			var cmd apitypes.AxisCommand
			if err := json.Unmarshal(sc.Bytes(), &cmd); err != nil {
				return fmt.Errorf("autopilot command %d: %w", n, err)
			}
			r.Set(toCommand(cmd))
			n++
		}
		if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			return err
		}
		logger.Info("autopilot stream closed", "commands", n)
		return nil
	}
}
