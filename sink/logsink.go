package sink

import "log/slog"

// Log is a Sink that only logs events. It is useful to check the firmware
// and the calibration without touching the real pointer.
type Log struct {
	logger *slog.Logger
	closed bool
}

// NewLog returns a Sink writing to logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Click(b Button) error {
	if l.closed {
		return ErrClosed
	}
	l.logger.Info("click", "button", b.String())
	return nil
}

func (l *Log) Move(dx, dy int) error {
	if l.closed {
		return ErrClosed
	}
	l.logger.Info("move", "dx", dx, "dy", dy)
	return nil
}

func (l *Log) Close() error {
	l.closed = true
	return nil
}
