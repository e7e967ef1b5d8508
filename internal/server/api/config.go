package api

import "time"

// ServerConfig configures the control API server.
type ServerConfig struct {
	Addr        string        `help:"Control API listen address; empty disables the API" default:"localhost:3250" env:"EGODRIVE_API_ADDR"`
	Password    string        `help:"Control API password; read from the key file when empty" env:"EGODRIVE_API_PASSWORD"`
	RequireAuth bool          `help:"Require authenticated connections; a key file is generated when no password is set" default:"true" env:"EGODRIVE_API_REQUIRE_AUTH"`
	KeyFile     string        `help:"Key file holding the API password (defaults to the data directory)" env:"EGODRIVE_API_KEY_FILE"`
	ReadTimeout time.Duration `help:"Time allowed for a client to send its request" default:"5s" env:"EGODRIVE_API_READ_TIMEOUT"`
}
