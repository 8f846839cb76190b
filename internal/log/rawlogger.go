package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records the telemetry stream verbatim, one entry per line.
type RawLogger interface {
	Log(in bool, data []byte)
}

// rawLogger implements RawLogger with thread-safe log.
type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// Log writes a single timestamped entry. in=true marks a line received from
// the board, in=false an event handed to the sink. Control characters are
// escaped so each entry stays on one line.
func (r *rawLogger) Log(in bool, data []byte) {
	if r.w == nil {
		return
	}

	dir := "TX"
	if in {
		dir = "RX"
	}

	line := fmt.Sprintf("%s %s %d bytes: %q\n",
		r.now().Format("2006/01/02 15:04:05.000"),
		dir,
		len(data),
		data)

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
