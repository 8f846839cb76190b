// Package source provides telemetry line sources: a serial port, a replay
// file or stdin.
package source

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrTimeout is returned by ReadLine when no complete line arrived within the
// source's read timeout. It is not fatal; callers simply read again.
var ErrTimeout = errors.New("read timeout")

// MaxLineLength bounds a single record. Longer runs are discarded as noise up
// to and including their newline.
const MaxLineLength = 4096

// Source yields decoded telemetry lines one at a time.
type Source interface {
	// ReadLine returns the next line without its terminator, with invalid
	// UTF-8 replaced and surrounding whitespace trimmed. It returns
	// ErrTimeout when the read timed out and io.EOF once the stream ended.
	ReadLine() (string, error)
	io.Closer
}

// LineReader splits a byte stream into lines. A read returning no data and no
// error is treated as a timeout; partial lines are kept until their newline
// arrives.
type LineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	err   error

	// discarding is set while the rest of an overlong record is skipped.
	discarding bool
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, chunk: make([]byte, 256)}
}

// ReadLine implements Source.
func (l *LineReader) ReadLine() (string, error) {
	for {
		if l.discarding {
			if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
				l.buf = l.buf[i+1:]
				l.discarding = false
			} else {
				l.buf = nil
			}
		}
		if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
			line := decode(l.buf[:i])
			l.buf = l.buf[i+1:]
			if len(l.buf) == 0 {
				l.buf = nil
			}
			return line, nil
		}
		if l.err != nil {
			if len(l.buf) > 0 {
				line := decode(l.buf)
				l.buf = nil
				return line, nil
			}
			return "", l.err
		}
		if len(l.buf) > MaxLineLength {
			l.buf = nil
			l.discarding = true
		}

		n, err := l.r.Read(l.chunk)
		l.buf = append(l.buf, l.chunk[:n]...)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return "", ErrTimeout
			}
			l.err = err
			continue
		}
		if n == 0 {
			return "", ErrTimeout
		}
	}
}

func decode(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "�"))
}
