package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
)

// Ping returns a handler reporting the server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: "egodrive", Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
