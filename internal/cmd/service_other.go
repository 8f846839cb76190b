//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoSystemd = errors.New("service management is only supported on linux")

func install([]string, *slog.Logger) error { return errNoSystemd }

func uninstall(*slog.Logger) error { return errNoSystemd }
