package source

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// StdinName selects standard input in Open.
const StdinName = "-"

// Reader replays telemetry from a file or stdin, optionally paced so that
// timing-dependent behaviour (double press, acceleration) is reproduced.
type Reader struct {
	*LineReader
	c           io.Closer
	pace        time.Duration
	started     bool
	interactive bool
}

// Open opens name for replay. StdinName reads standard input, which is never
// closed by Close.
func Open(name string, pace time.Duration) (*Reader, error) {
	if name == StdinName {
		return &Reader{
			LineReader:  NewLineReader(os.Stdin),
			pace:        pace,
			interactive: term.IsTerminal(int(os.Stdin.Fd())),
		}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return &Reader{LineReader: NewLineReader(f), c: f, pace: pace}, nil
}

// NewReader replays lines from r.
func NewReader(r io.Reader, pace time.Duration) *Reader {
	rd := &Reader{LineReader: NewLineReader(r), pace: pace}
	if c, ok := r.(io.Closer); ok {
		rd.c = c
	}
	return rd
}

// Interactive reports whether lines are typed on a terminal.
func (r *Reader) Interactive() bool { return r.interactive }

// ReadLine implements Source.
func (r *Reader) ReadLine() (string, error) {
	if r.pace > 0 && r.started {
		time.Sleep(r.pace)
	}
	r.started = true
	return r.LineReader.ReadLine()
}

// Close implements Source.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}
