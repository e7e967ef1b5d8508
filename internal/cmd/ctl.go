package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Alia5/egodrive/apiclient"
	"github.com/Alia5/egodrive/apitypes"
	"github.com/Alia5/egodrive/internal/server/api"
)

// Ctl sends one request to a running drive session through its control API.
type Ctl struct {
	Addr     string `help:"Control API address" default:"localhost:3250" env:"EGODRIVE_API_ADDR"`
	Password string `help:"Control API password; read from the key file when empty" env:"EGODRIVE_API_PASSWORD"`
	KeyFile  string `help:"Key file holding the API password (defaults to the data directory)" env:"EGODRIVE_API_KEY_FILE"`
	NoAuth   bool   `help:"Connect without authentication" default:"false"`

	Action string   `arg:"" name:"action" help:"Request to send" enum:"ping,state,devices,autopilot,takeover,speak,camera,look"`
	Args   []string `arg:"" optional:"" name:"args" help:"autopilot: on|off [steering throttle brake]; takeover: start-ndrt|issue|resume; speak: text; camera: direction; look: pitch yaw"`

	out    io.Writer
	client *apiclient.Client
}

// Run is called by Kong when the ctl command is executed.
func (c *Ctl) Run(logger *slog.Logger) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	client, err := c.newClient()
	if err != nil {
		return err
	}
	res, err := c.do(client)
	if err != nil {
		return err
	}
	logger.Debug("ctl request done", "action", c.Action)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func (c *Ctl) newClient() (*apiclient.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	if c.NoAuth {
		return apiclient.New(c.Addr), nil
	}
	pwd := c.Password
	if pwd == "" {
		path, err := keyFilePath(api.ServerConfig{KeyFile: c.KeyFile})
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read API key file (use --password or --no-auth): %w", err)
		}
		pwd = strings.TrimSpace(string(b))
	}
	return apiclient.NewWithPassword(c.Addr, pwd), nil
}

func (c *Ctl) arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

func (c *Ctl) do(client *apiclient.Client) (any, error) {
	switch c.Action {
	case "ping":
		return client.Ping()
	case "state":
		return client.VehicleState()
	case "devices":
		return client.Devices()
	case "takeover":
		if c.arg(0) == "" {
			return nil, errors.New("takeover needs an action: start-ndrt, issue or resume")
		}
		return client.Takeover(c.arg(0))
	case "speak":
		text := strings.Join(c.Args, " ")
		if text == "" {
			return nil, errors.New("speak needs some text")
		}
		return client.Speak(text, 0)
	case "camera":
		if c.arg(0) == "" {
			return nil, errors.New("camera needs a direction")
		}
		return client.Camera(c.arg(0))
	case "look":
		return c.look(client)
	case "autopilot":
		return c.autopilot(client)
	default:
		return nil, fmt.Errorf("unknown action %q", c.Action)
	}
}

func (c *Ctl) look(client *apiclient.Client) (any, error) {
	if len(c.Args) != 2 {
		return nil, errors.New("look needs a pitch and a yaw delta")
	}
	pitch, err := strconv.ParseFloat(c.Args[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid pitch %q: %w", c.Args[0], err)
	}
	yaw, err := strconv.ParseFloat(c.Args[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid yaw %q: %w", c.Args[1], err)
	}
	return client.CameraLook(pitch, yaw)
}

func (c *Ctl) autopilot(client *apiclient.Client) (any, error) {
	var engaged bool
	switch c.arg(0) {
	case "on":
		engaged = true
	case "off":
	default:
		return nil, errors.New("autopilot needs on or off")
	}
	if len(c.Args) == 1 {
		return client.AutopilotSet(&engaged, nil)
	}
	if len(c.Args) != 4 {
		return nil, errors.New("autopilot command needs steering, throttle and brake")
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(c.Args[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("autopilot value %q: %w", c.Args[i+1], err)
		}
		vals[i] = v
	}
	return client.AutopilotSet(&engaged, &apitypes.AxisCommand{Steering: vals[0], Throttle: vals[1], Brake: vals[2]})
}
