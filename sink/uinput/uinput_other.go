//go:build !linux

package uinput

import (
	"errors"
	"log/slog"

	"github.com/Alia5/joymouse/sink"
)

// ErrUnsupported is returned by Open on platforms without uinput.
var ErrUnsupported = errors.New("uinput is only available on linux")

// Sink is unavailable on this platform.
type Sink struct{}

func Open(cfg Config, logger *slog.Logger) (*Sink, error) { return nil, ErrUnsupported }

func (*Sink) Click(sink.Button) error { return ErrUnsupported }
func (*Sink) Move(int, int) error     { return ErrUnsupported }
func (*Sink) Close() error            { return nil }
