package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alia5/joymouse/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns its chunks one Read at a time. An empty chunk models a
// serial read timeout (0 bytes, nil error).
type chunkReader struct {
	chunks []string
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	next := c.chunks[0]
	n := copy(p, next)
	if n < len(next) {
		c.chunks[0] = next[n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

var errUnplugged = errors.New("device unplugged")

type result struct {
	line string
	err  error
}

func readAll(t *testing.T, s interface{ ReadLine() (string, error) }) []result {
	t.Helper()
	var out []result
	for i := 0; i < 100; i++ {
		line, err := s.ReadLine()
		out = append(out, result{line, err})
		if err != nil && !errors.Is(err, source.ErrTimeout) {
			return out
		}
	}
	t.Fatal("reader did not terminate")
	return nil
}

func TestLineReader(t *testing.T) {
	cases := []struct {
		name     string
		chunks   []string
		err      error
		expected []result
	}{
		{
			name:   "simple lines",
			chunks: []string{"PRESS\n40,0\r\n"},
			expected: []result{
				{"PRESS", nil},
				{"40,0", nil},
				{"", io.EOF},
			},
		},
		{
			name:   "partial line survives timeout",
			chunks: []string{"12", "", "3,4\n"},
			expected: []result{
				{"", source.ErrTimeout},
				{"123,4", nil},
				{"", io.EOF},
			},
		},
		{
			name:   "blank and padded lines",
			chunks: []string{"\n  LEFT \t\n"},
			expected: []result{
				{"", nil},
				{"LEFT", nil},
				{"", io.EOF},
			},
		},
		{
			name:   "trailing line without newline",
			chunks: []string{"UP\nDOWN"},
			expected: []result{
				{"UP", nil},
				{"DOWN", nil},
				{"", io.EOF},
			},
		},
		{
			name:   "invalid utf8 is replaced",
			chunks: []string{"\xffRIGHT\xfe\n"},
			expected: []result{
				{"�RIGHT�", nil},
				{"", io.EOF},
			},
		},
		{
			name:   "read error after data",
			chunks: []string{"PRESS\nPRE"},
			err:    errUnplugged,
			expected: []result{
				{"PRESS", nil},
				{"PRE", nil},
				{"", errUnplugged},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lr := source.NewLineReader(&chunkReader{chunks: tc.chunks, err: tc.err})
			assert.Equal(t, tc.expected, readAll(t, lr))
		})
	}
}

func TestLineReaderDeadlineIsTimeout(t *testing.T) {
	lr := source.NewLineReader(&chunkReader{chunks: []string{"1,"}, err: os.ErrDeadlineExceeded})
	_, err := lr.ReadLine()
	assert.ErrorIs(t, err, source.ErrTimeout)
}

func TestLineReaderDropsOverlongRecords(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "long noise",
			input:    strings.Repeat("x", 3*source.MaxLineLength) + "\nPRESS\n",
			expected: []string{"PRESS"},
		},
		{
			name:     "tail of overlong record",
			input:    strings.Repeat("#", 4352) + "300,0\n" + "LEFT\n",
			expected: []string{"LEFT"},
		},
		{
			name:     "overlong record at end of stream",
			input:    "UP\n" + strings.Repeat("#", 2*source.MaxLineLength) + "300,0",
			expected: []string{"UP"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lr := source.NewLineReader(strings.NewReader(tc.input))

			var lines []string
			for {
				line, err := lr.ReadLine()
				if err != nil {
					require.ErrorIs(t, err, io.EOF)
					break
				}
				lines = append(lines, line)
			}
			assert.Equal(t, tc.expected, lines)
		})
	}
}

func TestOpenReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.txt")
	require.NoError(t, os.WriteFile(path, []byte("PRESS\n100,0\n"), 0o644))

	r, err := source.Open(path, 0)
	require.NoError(t, err)
	defer r.Close()
	assert.False(t, r.Interactive())

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "PRESS", line)
	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "100,0", line)
	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := source.Open(filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}

func TestReaderPacing(t *testing.T) {
	r := source.NewReader(strings.NewReader("A\nB\nC\n"), 20*time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.ReadLine()
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.NoError(t, r.Close())
}

func TestOpenSerialErrors(t *testing.T) {
	_, err := source.OpenSerial(context.Background(), source.SerialConfig{})
	assert.EqualError(t, err, "serial port is not set")

	_, err = source.OpenSerial(context.Background(), source.SerialConfig{
		Port: filepath.Join(t.TempDir(), "ttyNOPE"),
		Baud: 9600,
	})
	assert.Error(t, err)
}
