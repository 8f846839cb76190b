// Package translator turns the joystick firmware's line protocol into
// pointer events.
//
// The firmware prints one record per line: "PRESS" for the stick button,
// "x,y" for analog samples and LEFT/RIGHT/UP/DOWN for digital directions.
// Analog samples go through a deadzone, a power response curve and a
// sustained-motion acceleration before being clamped to a per-move maximum.
package translator

import (
	"math"
	"time"
)

// State is the timing memory carried between lines. Zero times mean "never".
type State struct {
	LastClick     time.Time
	LastMovement  time.Time
	MovementCount int
}

// Step applies one line to st and returns the new state and the events the
// line produced. Lines that do not parse leave the state untouched.
func Step(cfg Config, st State, line string, now time.Time) (State, []Event) {
	return Apply(cfg, st, Classify(line), now)
}

// Apply is Step for an already classified token.
func Apply(cfg Config, st State, tok Token, now time.Time) (State, []Event) {
	switch tok.Kind {
	case TokenPress:
		return press(cfg, st, now)
	case TokenAnalog:
		return analog(cfg, st, tok.X, tok.Y, now)
	case TokenDirection:
		dx, dy := tok.X*cfg.DirectionStep, tok.Y*cfg.DirectionStep
		if dx == 0 && dy == 0 {
			return st, nil
		}
		return st, []Event{Move(dx, dy)}
	default:
		return st, nil
	}
}

// A press shortly after another press is the left button; an isolated press
// is the right button.
func press(cfg Config, st State, now time.Time) (State, []Event) {
	ev := RightClick()
	if !st.LastClick.IsZero() && now.Sub(st.LastClick) < cfg.DoubleClick {
		ev = LeftClick()
	}
	st.LastClick = now
	return st, []Event{ev}
}

func analog(cfg Config, st State, x, y int, now time.Time) (State, []Event) {
	x = cfg.deadzone(x)
	y = cfg.deadzone(y)
	if x == 0 && y == 0 {
		st.MovementCount = 0
		return st, nil
	}

	if !st.LastMovement.IsZero() && now.Sub(st.LastMovement) < cfg.AccelWindow {
		st.MovementCount = min(st.MovementCount+1, cfg.AccelCap)
	} else {
		st.MovementCount = 0
	}
	st.LastMovement = now

	accel := 1 + float64(st.MovementCount)*cfg.AccelStep
	dx := cfg.scale(x, accel)
	dy := cfg.scale(y, accel)
	if dx == 0 && dy == 0 {
		return st, nil
	}
	return st, []Event{Move(dx, dy)}
}

func (c Config) deadzone(raw int) int {
	if abs(raw) < c.Deadzone {
		return 0
	}
	return raw
}

// scale maps a raw axis value to cursor units. The fractional power is
// applied to the magnitude; the product is truncated toward zero before the
// sign is restored, then clamped.
func (c Config) scale(raw int, accel float64) int {
	if raw == 0 {
		return 0
	}
	factor := math.Pow(float64(abs(raw))/c.Normalize, c.Exponent)
	d := int(factor * float64(c.BaseScale) * accel)
	if raw < 0 {
		d = -d
	}
	return max(-c.MaxScale, min(c.MaxScale, d))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Translator owns a State and feeds it one line at a time. It is not safe
// for concurrent use; the read loop is its only caller.
type Translator struct {
	cfg   Config
	state State
}

// New returns a Translator with fresh state.
func New(cfg Config) *Translator {
	return &Translator{cfg: cfg}
}

// Process classifies and applies one line.
func (t *Translator) Process(line string, now time.Time) []Event {
	var evs []Event
	t.state, evs = Step(t.cfg, t.state, line, now)
	return evs
}

// Handle applies an already classified token.
func (t *Translator) Handle(tok Token, now time.Time) []Event {
	var evs []Event
	t.state, evs = Apply(t.cfg, t.state, tok, now)
	return evs
}

// State returns a copy of the current state.
func (t *Translator) State() State { return t.state }

// Config returns the translator's configuration.
func (t *Translator) Config() Config { return t.cfg }
