package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestConfigKey(t *testing.T) {
	type sample struct {
		Driver     string
		DeviceIdx  int
		HUDScaleVR float64
		TTS        bool
		WPM        int
		TextFile   string
		Named      string `name:"custom-name"`
	}
	want := map[string]string{
		"Driver":     "driver",
		"DeviceIdx":  "device_idx",
		"HUDScaleVR": "hud_scale_vr",
		"TTS":        "tts",
		"WPM":        "wpm",
		"TextFile":   "text_file",
		"Named":      "custom_name",
	}
	typ := reflect.TypeOf(sample{})
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		t.Run(f.Name, func(t *testing.T) {
			assert.Equal(t, want[f.Name], configKey(f))
		})
	}
}

func TestConfigInit_DriveJSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "drive.json")
	require.NoError(t, (&ConfigInit{Command: "drive", Format: "json", Output: dest}).Run())

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	assert.Equal(t, "11ms", m["tick_rate"])
	hw, ok := m["hardware"].(map[string]any)
	require.True(t, ok, "hardware section missing")
	assert.Equal(t, "auto", hw["driver"])
	assert.Equal(t, false, hw["exclusive"])

	hmdCfg, ok := m["hmd"].(map[string]any)
	require.True(t, ok, "hmd section missing")
	assert.Equal(t, 1.0, hmdCfg["hud_scale_vr"])
	assert.Equal(t, "none", hmdCfg["driver"])

	apiCfg, ok := m["api"].(map[string]any)
	require.True(t, ok, "api section missing")
	assert.Equal(t, "localhost:3250", apiCfg["addr"])
	assert.Equal(t, true, apiCfg["require_auth"])

	for _, section := range []string{"vehicle_inputs", "autopilot", "takeover", "ndrt", "recorder", "keyboard"} {
		assert.Contains(t, m, section)
	}
}

func TestConfigInit_CtlSkipsArguments(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "ctl.yaml")
	require.NoError(t, (&ConfigInit{Command: "ctl", Format: "yml", Output: dest}).Run())

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(b, &m))

	assert.Equal(t, "localhost:3250", m["addr"])
	assert.Equal(t, false, m["no_auth"])
	assert.NotContains(t, m, "action")
	assert.NotContains(t, m, "args")
}

func TestConfigInit_TOML(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "drive.toml")
	require.NoError(t, (&ConfigInit{Command: "drive", Format: "toml", Output: dest}).Run())

	tree, err := toml.LoadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "auto", tree.Get("hardware.driver"))
	assert.Equal(t, "11ms", tree.Get("tick_rate"))
}

func TestConfigInit_Errors(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "drive.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o644))

	tests := []struct {
		name string
		cmd  ConfigInit
	}{
		{name: "unknown format", cmd: ConfigInit{Command: "drive", Format: "ini", Output: filepath.Join(dir, "x.ini")}},
		{name: "unknown command", cmd: ConfigInit{Command: "bogus", Format: "json", Output: filepath.Join(dir, "x.json")}},
		{name: "existing file", cmd: ConfigInit{Command: "drive", Format: "json", Output: existing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cmd.Run())
		})
	}

	forced := ConfigInit{Command: "drive", Format: "json", Output: existing, Force: true}
	require.NoError(t, forced.Run())
	b, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(b), "tick_rate")
}
