package cmd

import "log/slog"

// ServiceCommand manages the systemd unit that runs the bridge at boot.
type ServiceCommand struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the systemd service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the systemd service"`
}

type ServiceInstall struct {
	Args []string `arg:"" optional:"" passthrough:"" help:"Arguments for the run command, e.g. --serial.port=/dev/ttyACM0"`
}

func (s *ServiceInstall) Run(logger *slog.Logger) error {
	return install(s.Args, logger)
}

type ServiceUninstall struct{}

func (s *ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}
