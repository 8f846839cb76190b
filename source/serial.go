package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialConfig configures the serial port source.
type SerialConfig struct {
	Port        string        `help:"Serial device of the joystick board (e.g. /dev/ttyACM0, COM3)" env:"JOYMOUSE_SERIAL_PORT"`
	Baud        int           `help:"Serial baud rate" default:"9600" env:"JOYMOUSE_SERIAL_BAUD"`
	ReadTimeout time.Duration `help:"Read timeout; an idle port yields nothing for this long" default:"1s" env:"JOYMOUSE_SERIAL_READ_TIMEOUT"`
	Settle      time.Duration `help:"Wait after opening the port while the board resets" default:"2s" env:"JOYMOUSE_SERIAL_SETTLE"`
}

// Serial reads telemetry lines from a serial port.
type Serial struct {
	*LineReader
	port serial.Port
	name string
}

// OpenSerial opens the configured port and waits out the board's reset. The
// wait is aborted when ctx is done.
func OpenSerial(ctx context.Context, cfg SerialConfig) (*Serial, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port is not set")
	}
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	if cfg.ReadTimeout > 0 {
		if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}

	if cfg.Settle > 0 {
		t := time.NewTimer(cfg.Settle)
		defer t.Stop()
		select {
		case <-ctx.Done():
			_ = p.Close()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return &Serial{LineReader: NewLineReader(p), port: p, name: cfg.Port}, nil
}

// Name returns the device path the source was opened on.
func (s *Serial) Name() string { return s.name }

// Close closes the port. A ReadLine blocked on the port returns an error.
func (s *Serial) Close() error {
	return s.port.Close()
}
