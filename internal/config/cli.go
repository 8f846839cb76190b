// Package config holds the root command line of joymouse.
package config

import (
	"github.com/Alia5/joymouse/internal/cmd"
	"github.com/Alia5/joymouse/internal/log"
)

type CLI struct {
	ConfigFile string `name:"config" help:"Configuration file (JSON, YAML or TOML by extension)" env:"JOYMOUSE_CONFIG"`

	Log log.Config `embed:"" prefix:"log."`

	Run     cmd.Run            `cmd:"" default:"withargs" help:"Translate joystick telemetry into pointer events"`
	Ports   cmd.Ports          `cmd:"" help:"List serial ports"`
	Config  cmd.ConfigCommand  `cmd:"" help:"Configuration file helpers"`
	Service cmd.ServiceCommand `cmd:"" help:"Run the bridge as a systemd service"`
}
