package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/internal/speech"
)

// Speak returns a handler queueing text for text-to-speech. The payload is
// either a SpeakRequest object or plain text read at defaultWPM.
func Speak(sp *speech.Speaker, defaultWPM int) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if sp == nil {
			return apierror.ErrUnavailable("text-to-speech is disabled")
		}
		payload := strings.TrimSpace(req.Payload)
		if payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		u := speech.Utterance{Text: payload, WPM: defaultWPM}
		if strings.HasPrefix(payload, "{") {
			var body apitypes.SpeakRequest
			if err := json.Unmarshal([]byte(payload), &body); err != nil {
				return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
			}
			if strings.TrimSpace(body.Text) == "" {
				return apierror.ErrBadRequest("missing text")
			}
			u.Text = body.Text
			if body.WPM > 0 {
				u.WPM = body.WPM
			}
		}
		if !sp.Say(u) {
			return apierror.ErrConflict("speech queue is full")
		}
		b, err := json.Marshal(apitypes.SpeakResponse{Queued: true})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
