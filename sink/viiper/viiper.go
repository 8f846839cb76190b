// Package viiper drives a virtual USB mouse exposed by a VIIPER server.
package viiper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Alia5/joymouse/apiclient"
	"github.com/Alia5/joymouse/device/mouse"
	"github.com/Alia5/joymouse/sink"
)

// maxAutoBus bounds the search for a free bus number when none exists.
const maxAutoBus = 100

type Config struct {
	Addr        string        `help:"VIIPER API server address" default:"localhost:3242" env:"JOYMOUSE_VIIPER_ADDR"`
	Password    string        `help:"VIIPER API password; empty disables authentication" env:"JOYMOUSE_VIIPER_PASSWORD"`
	BusID       uint32        `help:"Bus to attach the mouse to; 0 picks the lowest existing bus or creates one" default:"0" env:"JOYMOUSE_VIIPER_BUS"`
	ClickHold   time.Duration `help:"How long a click keeps the button pressed" default:"20ms" env:"JOYMOUSE_VIIPER_CLICK_HOLD"`
	DialTimeout time.Duration `help:"Timeout for connecting to the VIIPER server" default:"3s" env:"JOYMOUSE_VIIPER_DIAL_TIMEOUT"`
}

// Sink streams mouse input states to a VIIPER mouse device.
type Sink struct {
	cfg    Config
	client *apiclient.Client
	stream *apiclient.DeviceStream
	logger *slog.Logger

	busID      uint32
	devID      string
	createdBus bool

	mu     sync.Mutex
	closed bool
}

// Open attaches a new mouse device to a VIIPER bus and connects its stream.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Sink, error) {
	client := apiclient.NewWithConfig(cfg.Addr, &apiclient.Config{
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Password:     cfg.Password,
	})

	info, err := client.PingCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr, err)
	}
	logger.Debug("VIIPER server reachable", "addr", cfg.Addr, "server", info.Server, "version", info.Version)

	busID, created, err := pickBus(ctx, client, cfg.BusID)
	if err != nil {
		return nil, err
	}

	stream, dev, err := client.AddDeviceAndConnect(ctx, busID, mouse.DeviceType, nil)
	if err != nil {
		if dev != nil {
			_, _ = client.DeviceRemoveCtx(ctx, busID, dev.DevId)
		}
		if created {
			_, _ = client.BusRemoveCtx(ctx, busID)
		}
		return nil, fmt.Errorf("add mouse on bus %d: %w", busID, err)
	}

	logger.Info("VIIPER mouse attached", "addr", cfg.Addr, "version", info.Version, "bus", busID, "device", dev.DevId, "vid", dev.Vid, "pid", dev.Pid)
	return &Sink{
		cfg:        cfg,
		client:     client,
		stream:     stream,
		logger:     logger,
		busID:      busID,
		devID:      dev.DevId,
		createdBus: created,
	}, nil
}

func pickBus(ctx context.Context, client *apiclient.Client, want uint32) (uint32, bool, error) {
	list, err := client.BusListCtx(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("list buses: %w", err)
	}
	if want != 0 {
		if slices.Contains(list.Buses, want) {
			return want, false, nil
		}
		if _, err := client.BusCreateCtx(ctx, want); err != nil {
			return 0, false, fmt.Errorf("create bus %d: %w", want, err)
		}
		return want, true, nil
	}
	if len(list.Buses) > 0 {
		return slices.Min(list.Buses), false, nil
	}

	var lastErr error
	for id := uint32(1); id <= maxAutoBus; id++ {
		if _, err := client.BusCreateCtx(ctx, id); err != nil {
			lastErr = err
			continue
		}
		return id, true, nil
	}
	return 0, false, fmt.Errorf("no free bus number: %w", lastErr)
}

// BusID returns the bus the mouse is attached to.
func (s *Sink) BusID() uint32 { return s.busID }

// DevID returns the device id of the mouse on its bus.
func (s *Sink) DevID() string { return s.devID }

func (s *Sink) Click(b sink.Button) error {
	var mask uint8
	switch b {
	case sink.ButtonLeft:
		mask = mouse.Btn_Left
	case sink.ButtonRight:
		mask = mouse.Btn_Right
	default:
		return fmt.Errorf("unsupported button %s", b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	press := mouse.Pressed(mask)
	if err := s.stream.WriteBinary(&press); err != nil {
		return fmt.Errorf("press %s: %w", b, err)
	}
	time.Sleep(s.cfg.ClickHold)
	release := mouse.InputState{}
	if err := s.stream.WriteBinary(&release); err != nil {
		return fmt.Errorf("release %s: %w", b, err)
	}
	return nil
}

func (s *Sink) Move(dx, dy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	st := mouse.Motion(dx, dy)
	return s.stream.WriteBinary(&st)
}

// Close disconnects the stream and removes the mouse, and the bus when
// Open created it.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if err := s.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stream: %w", err))
	}
	if _, err := s.client.DeviceRemoveCtx(ctx, s.busID, s.devID); err != nil {
		errs = append(errs, fmt.Errorf("remove device %s: %w", s.devID, err))
	}
	if s.createdBus {
		if _, err := s.client.BusRemoveCtx(ctx, s.busID); err != nil {
			errs = append(errs, fmt.Errorf("remove bus %d: %w", s.busID, err))
		}
	}
	s.logger.Info("VIIPER mouse detached", "bus", s.busID, "device", s.devID)
	return errors.Join(errs...)
}
