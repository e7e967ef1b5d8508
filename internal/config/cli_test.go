package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/egodrive/internal/config"
)

func TestCLI_Defaults(t *testing.T) {
	var cli config.CLI
	parser, err := kong.New(&cli, kong.Name("egodrive"))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"drive"})
	require.NoError(t, err)
	assert.Equal(t, "drive", ctx.Command())
	assert.Equal(t, "info", cli.Log.Level)
	assert.Equal(t, 11*time.Millisecond, cli.Drive.TickRate)
	assert.Equal(t, "auto", cli.Drive.Hardware.Driver)
	assert.False(t, cli.Drive.Hardware.Exclusive)
	assert.Equal(t, 700*time.Millisecond, cli.Drive.Keyboard.RepeatDelay)
	assert.Equal(t, "none", cli.Drive.HMD.Driver)
	assert.Equal(t, 1.0, cli.Drive.HMD.HUDScaleVR)
	assert.Equal(t, "localhost:3250", cli.Drive.API.Addr)
	assert.True(t, cli.Drive.API.RequireAuth)
}

func TestCLI_JSONConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "log": {"level": "debug"},
  "tick_rate": "20ms",
  "hardware": {"driver": "virtual", "exclusive": true},
  "hmd": {"driver": "virtual", "rectangular_reticle": true},
  "autopilot": {"mode": "remote"},
  "api": {"addr": "127.0.0.1:4000"}
}`), 0o644))

	var cli config.CLI
	parser, err := kong.New(&cli, kong.Name("egodrive"), kong.Configuration(kong.JSON, path))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"drive", "--hardware.driver=null"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cli.Log.Level)
	assert.Equal(t, 20*time.Millisecond, cli.Drive.TickRate)
	assert.Equal(t, "null", cli.Drive.Hardware.Driver, "flags override the config file")
	assert.True(t, cli.Drive.Hardware.Exclusive)
	assert.Equal(t, "virtual", cli.Drive.HMD.Driver)
	assert.True(t, cli.Drive.HMD.RectangularReticle)
	assert.Equal(t, "remote", cli.Drive.Autopilot.Mode)
	assert.Equal(t, "127.0.0.1:4000", cli.Drive.API.Addr)
}

func TestCLI_Ctl(t *testing.T) {
	var cli config.CLI
	parser, err := kong.New(&cli, kong.Name("egodrive"))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"ctl", "--no-auth", "takeover", "issue"})
	require.NoError(t, err)
	assert.True(t, cli.Ctl.NoAuth)
	assert.Equal(t, "takeover", cli.Ctl.Action)
	assert.Equal(t, []string{"issue"}, cli.Ctl.Args)

	_, err = parser.Parse([]string{"ctl", "explode"})
	assert.Error(t, err)
}
