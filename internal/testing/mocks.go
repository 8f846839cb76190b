// Package testing holds fakes shared by the package tests.
package testing

import (
	"io"
	"sync"

	"github.com/Alia5/joymouse/sink"
)

// Call is one recorded sink invocation.
type Call struct {
	Button sink.Button
	DX, DY int
}

// Click returns the Call recorded for a click on b.
func Click(b sink.Button) Call { return Call{Button: b} }

// Move returns the Call recorded for a move.
func Move(dx, dy int) Call { return Call{DX: dx, DY: dy} }

// RecordingSink records every call. When Err is set, the call numbered
// FailAt (zero based) returns it.
type RecordingSink struct {
	mu     sync.Mutex
	calls  []Call
	closed bool

	FailAt int
	Err    error
}

func (r *RecordingSink) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return sink.ErrClosed
	}
	if r.Err != nil && len(r.calls) == r.FailAt {
		return r.Err
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *RecordingSink) Click(b sink.Button) error { return r.record(Click(b)) }

func (r *RecordingSink) Move(dx, dy int) error { return r.record(Move(dx, dy)) }

func (r *RecordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *RecordingSink) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Closed reports whether Close was called.
func (r *RecordingSink) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Read is one scripted ReadLine result.
type Read struct {
	Line string
	Err  error
}

// Line returns a successful Read.
func Line(s string) Read { return Read{Line: s} }

// ScriptedSource replays its reads in order, then returns io.EOF.
type ScriptedSource struct {
	mu     sync.Mutex
	reads  []Read
	closed bool
}

// NewScriptedSource returns a source replaying reads.
func NewScriptedSource(reads ...Read) *ScriptedSource {
	return &ScriptedSource{reads: reads}
}

func (s *ScriptedSource) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if len(s.reads) == 0 {
		return "", io.EOF
	}
	r := s.reads[0]
	s.reads = s.reads[1:]
	return r.Line, r.Err
}

func (s *ScriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
