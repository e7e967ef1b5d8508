// Package config holds the root command line of egodrive. Every field can
// also come from a JSON, YAML or TOML configuration file.
package config

import "github.com/Alia5/egodrive/internal/cmd"

// Log configures process logging.
type Log struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" enum:"trace,debug,info,warn,error" env:"EGODRIVE_LOG_LEVEL"`
	File    string `help:"Also write the log to this file" env:"EGODRIVE_LOG_FILE"`
	RawFile string `help:"Dump raw wheel samples as hex lines to this file" env:"EGODRIVE_LOG_RAW_FILE"`
}

// CLI is the root command.
type CLI struct {
	ConfigFile string `name:"config" help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"EGODRIVE_CONFIG"`
	Log        Log    `embed:"" prefix:"log."`

	Drive    cmd.Drive         `cmd:"" help:"Run a driving session" default:"withargs"`
	Devices  cmd.Devices       `cmd:"" help:"List wheel drivers and connected wheels"`
	Sessions cmd.Sessions      `cmd:"" help:"List recorded sessions"`
	Ctl      cmd.Ctl           `cmd:"" help:"Send a request to a running session"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
