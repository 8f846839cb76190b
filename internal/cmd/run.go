package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/joymouse/bridge"
	"github.com/Alia5/joymouse/internal/log"
	"github.com/Alia5/joymouse/sink"
	"github.com/Alia5/joymouse/sink/mqtt"
	"github.com/Alia5/joymouse/sink/uinput"
	"github.com/Alia5/joymouse/sink/viiper"
	"github.com/Alia5/joymouse/source"
	"github.com/Alia5/joymouse/translator"
)

// shutdownGrace bounds the wait for a read that cannot be interrupted, such as stdin.
const shutdownGrace = 2 * time.Second

type Run struct {
	Input      string              `help:"Replay telemetry from this file, or - for stdin, instead of the serial port" env:"JOYMOUSE_INPUT"`
	Pace       time.Duration       `help:"Delay between replayed lines" default:"0s" env:"JOYMOUSE_PACE"`
	Sink       string              `help:"Where pointer events go" enum:"uinput,viiper,mqtt,log" default:"uinput" env:"JOYMOUSE_SINK"`
	Serial     source.SerialConfig `embed:"" prefix:"serial."`
	Translator translator.Config   `embed:"" prefix:"translator."`
	Uinput     uinput.Config       `embed:"" prefix:"uinput."`
	Viiper     ViiperConfig        `embed:"" prefix:"viiper."`
	MQTT       mqtt.Config         `embed:"" prefix:"mqtt."`
}

// ViiperConfig adds a key file fallback for the VIIPER password.
type ViiperConfig struct {
	viiper.Config `embed:""`
	KeyFile       string `help:"Read the VIIPER password from this file when no password is given" env:"JOYMOUSE_VIIPER_KEY_FILE"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger)
}

// Start runs the bridge until the input ends, a sink fails or ctx is done.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if err := r.Translator.Validate(); err != nil {
		return fmt.Errorf("invalid translator config: %w", err)
	}

	src, err := r.openSource(ctx, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	s, err := r.openSink(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close sink", "sink", r.Sink, "error", err)
		}
	}()

	b := bridge.New(src, r.Translator, s, logger, rawLogger)
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	logger.Info("Bridge running", "sink", r.Sink)
	select {
	case err = <-done:
	case <-ctx.Done():
		logger.Info("Shutting down")
		_ = src.Close()
		select {
		case err = <-done:
		case <-time.After(shutdownGrace):
			logger.Warn("Input did not unblock, exiting without waiting")
			return nil
		}
	}

	logger.Info("Bridge stopped", "stats", b.Stats())
	return err
}

func (r *Run) openSource(ctx context.Context, logger *slog.Logger) (source.Source, error) {
	if r.Input != "" {
		rd, err := source.Open(r.Input, r.Pace)
		if err != nil {
			return nil, err
		}
		if rd.Interactive() {
			logger.Info("Reading telemetry lines from the terminal, end with Ctrl-D")
		} else {
			logger.Info("Replaying telemetry", "input", r.Input, "pace", r.Pace)
		}
		return rd, nil
	}

	logger.Info("Opening serial port", "port", r.Serial.Port, "baud", r.Serial.Baud, "settle", r.Serial.Settle)
	sp, err := source.OpenSerial(ctx, r.Serial)
	if err != nil {
		return nil, err
	}
	logger.Info("Serial port ready", "port", sp.Name())
	return sp, nil
}

func (r *Run) openSink(ctx context.Context, logger *slog.Logger) (sink.Sink, error) {
	switch r.Sink {
	case "uinput":
		s, err := uinput.Open(r.Uinput, logger)
		if err != nil {
			return nil, fmt.Errorf("open uinput sink: %w", err)
		}
		return s, nil
	case "viiper":
		cfg := r.Viiper.Config
		if cfg.Password == "" && r.Viiper.KeyFile != "" {
			pwd, err := os.ReadFile(r.Viiper.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("read VIIPER key file: %w", err)
			}
			cfg.Password = strings.TrimSpace(string(pwd))
		}
		s, err := viiper.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open viiper sink: %w", err)
		}
		return s, nil
	case "mqtt":
		s, err := mqtt.Open(ctx, r.MQTT, logger)
		if err != nil {
			return nil, fmt.Errorf("open mqtt sink: %w", err)
		}
		logger.Info("Publishing events", "topic", s.Topic())
		return s, nil
	case "log":
		return sink.NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown sink %q", r.Sink)
	}
}
