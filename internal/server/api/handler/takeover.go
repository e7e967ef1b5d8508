package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/internal/session"
)

// Takeover actions.
const (
	TakeoverStartNDRT = "start-ndrt"
	TakeoverIssue     = "issue"
	TakeoverResume    = "resume"
)

// Takeover returns a handler driving the take-over handshake: starting the
// reading task, issuing a take-over request and resuming the autopilot.
func Takeover(s *session.Session) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		action := req.Params["action"]
		var fn func(*session.Session) error
		switch action {
		case TakeoverStartNDRT:
			fn = (*session.Session).StartNDRT
		case TakeoverIssue:
			fn = func(s *session.Session) error {
				s.IssueTOR(time.Now())
				return nil
			}
		case TakeoverResume:
			fn = (*session.Session).ResumeAIControl
		default:
			return apierror.ErrBadRequest(fmt.Sprintf("unknown takeover action: %s", action))
		}

		out := apitypes.TakeoverResponse{Action: action}
		err := s.Do(req.Ctx, func(s *session.Session) error {
			if err := fn(s); err != nil {
				return err
			}
			out.Phase = s.Phase().String()
			return nil
		})
		if err != nil {
			return sessionError(err)
		}
		logger.Info("takeover action", "action", action, "phase", out.Phase)
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
