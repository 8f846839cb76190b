package mouse_test

import (
	"io"
	"testing"

	"github.com/Alia5/joymouse/device/mouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBinary(t *testing.T) {
	type testCase struct {
		name     string
		state    mouse.InputState
		expected []byte
	}

	cases := []testCase{
		{
			name:     "neutral",
			state:    mouse.InputState{},
			expected: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "left held",
			state:    mouse.Pressed(mouse.Btn_Left),
			expected: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "right held, upper bits masked",
			state:    mouse.Pressed(0xE0 | mouse.Btn_Right),
			expected: []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "negative motion",
			state:    mouse.Motion(-25, 3),
			expected: []byte{0x00, 0xE7, 0xFF, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "saturated motion",
			state:    mouse.Motion(100000, -100000),
			expected: []byte{0x00, 0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "wheel and pan",
			state:    mouse.InputState{Wheel: 1, Pan: -1},
			expected: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0xFF, 0xFF},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.state.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)

			var back mouse.InputState
			require.NoError(t, back.UnmarshalBinary(b))
			assert.Equal(t, tc.state, back)
		})
	}
}

func TestUnmarshalShort(t *testing.T) {
	var s mouse.InputState
	assert.ErrorIs(t, s.UnmarshalBinary([]byte{1, 2, 3}), io.ErrUnexpectedEOF)
}
