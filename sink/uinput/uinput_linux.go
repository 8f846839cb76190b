//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/Alia5/joymouse/sink"
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// userDev mirrors struct uinput_user_dev.
type userDev struct {
	Name         [maxNameSize]byte
	ID           inputID
	FFEffectsMax uint32
	Absmax       [absCnt]int32
	Absmin       [absCnt]int32
	Absfuzz      [absCnt]int32
	Absflat      [absCnt]int32
}

// inputEvent mirrors struct input_event. The kernel stamps the time itself.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Sink is a virtual mouse with REL_X, REL_Y, BTN_LEFT and BTN_RIGHT.
type Sink struct {
	w       io.Writer
	closer  func() error
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
	scratch bytes.Buffer
}

// Open registers the device with the kernel.
func Open(cfg Config, logger *slog.Logger) (*Sink, error) {
	f, err := os.OpenFile(cfg.Device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	fd := int(f.Fd())

	ioctls := []struct {
		req   uint
		value int
	}{
		{uiSetEvBit, evKey},
		{uiSetEvBit, evRel},
		{uiSetEvBit, evSyn},
		{uiSetKeyBit, btnLeft},
		{uiSetKeyBit, btnRight},
		{uiSetRelBit, relX},
		{uiSetRelBit, relY},
	}
	for _, c := range ioctls {
		if err := unix.IoctlSetInt(fd, c.req, c.value); err != nil {
			f.Close()
			return nil, fmt.Errorf("ioctl %#x(%#x): %w", c.req, c.value, err)
		}
	}

	dev := userDev{ID: inputID{Bustype: busVirtual, Vendor: cfg.Vendor, Product: cfg.Product, Version: 1}}
	copy(dev.Name[:maxNameSize-1], cfg.Name)
	if err := binary.Write(f, binary.NativeEndian, &dev); err != nil {
		f.Close()
		return nil, fmt.Errorf("write device setup: %w", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("create device: %w", err)
	}

	logger.Info("uinput mouse created", "name", cfg.Name, "vendor", fmt.Sprintf("0x%04x", cfg.Vendor), "product", fmt.Sprintf("0x%04x", cfg.Product))
	return newSink(f, func() error {
		destroyErr := unix.IoctlSetInt(fd, uiDevDestroy, 0)
		closeErr := f.Close()
		if destroyErr != nil {
			return fmt.Errorf("destroy device: %w", destroyErr)
		}
		return closeErr
	}, logger), nil
}

func newSink(w io.Writer, closer func() error, logger *slog.Logger) *Sink {
	return &Sink{w: w, closer: closer, logger: logger}
}

func (s *Sink) Click(b sink.Button) error {
	var code uint16
	switch b {
	case sink.ButtonLeft:
		code = btnLeft
	case sink.ButtonRight:
		code = btnRight
	default:
		return fmt.Errorf("unsupported button %s", b)
	}
	return s.emit(
		inputEvent{Type: evKey, Code: code, Value: 1},
		inputEvent{Type: evSyn, Code: synReport},
		inputEvent{Type: evKey, Code: code, Value: 0},
		inputEvent{Type: evSyn, Code: synReport},
	)
}

// Move reports the non-zero axes followed by one SYN_REPORT.
func (s *Sink) Move(dx, dy int) error {
	evs := make([]inputEvent, 0, 3)
	if dx != 0 {
		evs = append(evs, inputEvent{Type: evRel, Code: relX, Value: int32(dx)})
	}
	if dy != 0 {
		evs = append(evs, inputEvent{Type: evRel, Code: relY, Value: int32(dy)})
	}
	if len(evs) == 0 {
		return nil
	}
	return s.emit(append(evs, inputEvent{Type: evSyn, Code: synReport})...)
}

func (s *Sink) emit(evs ...inputEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	s.scratch.Reset()
	for i := range evs {
		if err := binary.Write(&s.scratch, binary.NativeEndian, &evs[i]); err != nil {
			return err
		}
	}
	if _, err := s.w.Write(s.scratch.Bytes()); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

// Close destroys the device.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("uinput mouse destroyed")
	return s.closer()
}
