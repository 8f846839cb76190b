//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	serviceName = "joymouse.service"
	servicePath = "/etc/systemd/system/joymouse.service"
)

func install(runArgs []string, logger *slog.Logger) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}

	unit := systemdUnitContent(exePath, runArgs)
	if err := os.WriteFile(servicePath, []byte(unit), 0o644); err != nil {
		return err
	}

	steps := [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	}
	for _, args := range steps {
		if err := runSystemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("joymouse systemd service installed", "path", servicePath, "exe", exePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	var errs []error

	if err := runSystemctl("stop", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := runSystemctl("disable", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("joymouse systemd service removed", "path", servicePath)
	return nil
}

// systemdUnitContent restarts the bridge when the board is unplugged, since
// a vanished serial port ends the run command with an error.
func systemdUnitContent(exePath string, runArgs []string) string {
	execStart := []string{systemdQuote(exePath), "run"}
	for _, a := range runArgs {
		execStart = append(execStart, systemdQuote(a))
	}
	return fmt.Sprintf(`[Unit]
Description=joymouse serial joystick bridge
After=systemd-udev-settle.service

[Service]
Type=simple
ExecStart=%s
WorkingDirectory=%s
Restart=on-failure
RestartSec=3

[Install]
WantedBy=multi-user.target
`, strings.Join(execStart, " "), strings.ReplaceAll(filepath.Dir(exePath), "%", "%%"))
}

var systemdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"%", "%%",
	"$", "$$",
)

// systemdQuote quotes one ExecStart word. Specifiers and variable
// expansion are escaped so the argument reaches the process verbatim.
func systemdQuote(s string) string {
	return `"` + systemdEscaper.Replace(s) + `"`
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func runSystemctl(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
