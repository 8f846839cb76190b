// Package sink defines where translated pointer events go.
package sink

import (
	"errors"
	"fmt"
	"io"

	"github.com/Alia5/joymouse/translator"
)

// ErrClosed is returned by sinks used after Close.
var ErrClosed = errors.New("sink closed")

// Button identifies a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", uint8(b))
	}
}

// Sink is a virtual pointing device.
type Sink interface {
	// Click presses and immediately releases b.
	Click(b Button) error
	// Move moves the pointer by a relative amount in device units.
	Move(dx, dy int) error
	io.Closer
}

// Dispatch hands ev to s.
func Dispatch(s Sink, ev translator.Event) error {
	switch ev.Kind {
	case translator.EventLeftClick:
		return s.Click(ButtonLeft)
	case translator.EventRightClick:
		return s.Click(ButtonRight)
	case translator.EventMove:
		return s.Move(ev.DX, ev.DY)
	default:
		return fmt.Errorf("unknown event kind %s", ev.Kind)
	}
}
