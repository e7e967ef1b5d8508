package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindUserConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
		want string
	}{
		{name: "equals form", args: []string{"drive", "--config=a.yaml"}, want: "a.yaml"},
		{name: "separate value", args: []string{"--config", "b.toml", "drive"}, want: "b.toml"},
		{name: "dangling flag", args: []string{"drive", "--config"}, want: ""},
		{name: "env fallback", args: []string{"drive"}, env: "c.json", want: "c.json"},
		{name: "flag wins over env", args: []string{"--config=d.json"}, env: "c.json", want: "d.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EGODRIVE_CONFIG", tt.env)
			assert.Equal(t, tt.want, findUserConfig(tt.args))
		})
	}
}
