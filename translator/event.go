package translator

import "fmt"

// EventKind identifies an output event.
type EventKind uint8

const (
	EventLeftClick EventKind = iota + 1
	EventRightClick
	EventMove
)

func (k EventKind) String() string {
	switch k {
	case EventLeftClick:
		return "left-click"
	case EventRightClick:
		return "right-click"
	case EventMove:
		return "move"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a pointer action produced from one telemetry line.
// DX and DY are only meaningful for EventMove.
type Event struct {
	Kind   EventKind
	DX, DY int
}

// LeftClick returns a left button click event.
func LeftClick() Event { return Event{Kind: EventLeftClick} }

// RightClick returns a right button click event.
func RightClick() Event { return Event{Kind: EventRightClick} }

// Move returns a relative motion event.
func Move(dx, dy int) Event { return Event{Kind: EventMove, DX: dx, DY: dy} }

func (e Event) String() string {
	if e.Kind == EventMove {
		return fmt.Sprintf("move(%d,%d)", e.DX, e.DY)
	}
	return e.Kind.String()
}
