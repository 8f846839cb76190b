// Package mouse encodes the input state of a VIIPER virtual mouse.
package mouse

import (
	"io"
	"math"
)

// WireSize is the length of an encoded InputState.
const WireSize = 9

// InputState represents the mouse state streamed to the device.
// viiper:wire mouse c2s buttons:u8 dx:i16 dy:i16 wheel:i16 pan:i16
type InputState struct {
	// Button bitfield: bit 0=Left, 1=Right, 2=Middle, 3=Back, 4=Forward
	Buttons uint8
	// Delta X/Y: signed 16-bit relative movement, consumed once per poll
	DX, DY int16
	// Wheel: signed 16-bit vertical scroll
	Wheel int16
	// Pan: signed 16-bit horizontal scroll
	Pan int16
}

// Motion returns a state carrying a relative move with no buttons held.
// Deltas outside the int16 range saturate.
func Motion(dx, dy int) InputState {
	return InputState{DX: saturate(dx), DY: saturate(dy)}
}

// Pressed returns a state holding the given buttons with no motion.
func Pressed(buttons uint8) InputState {
	return InputState{Buttons: buttons & buttonMask}
}

func saturate(v int) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// MarshalBinary encodes InputState to 9 little-endian bytes.
func (m *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, WireSize)
	b[0] = m.Buttons
	b[1] = byte(m.DX)
	b[2] = byte(m.DX >> 8)
	b[3] = byte(m.DY)
	b[4] = byte(m.DY >> 8)
	b[5] = byte(m.Wheel)
	b[6] = byte(m.Wheel >> 8)
	b[7] = byte(m.Pan)
	b[8] = byte(m.Pan >> 8)
	return b, nil
}

// UnmarshalBinary decodes 9 bytes into InputState.
func (m *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < WireSize {
		return io.ErrUnexpectedEOF
	}
	m.Buttons = data[0]
	m.DX = int16(data[1]) | int16(data[2])<<8
	m.DY = int16(data[3]) | int16(data[4])<<8
	m.Wheel = int16(data[5]) | int16(data[6])<<8
	m.Pan = int16(data[7]) | int16(data[8])<<8
	return nil
}
