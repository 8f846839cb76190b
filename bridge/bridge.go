// Package bridge runs the read loop that feeds telemetry lines through the
// translator into a sink.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Alia5/joymouse/internal/log"
	"github.com/Alia5/joymouse/sink"
	"github.com/Alia5/joymouse/source"
	"github.com/Alia5/joymouse/translator"
)

// LineSource is the input side of the bridge.
type LineSource interface {
	ReadLine() (string, error)
}

// Stats counts what the loop has seen.
type Stats struct {
	Lines    int
	Ignored  int
	Timeouts int
	Clicks   int
	Moves    int
}

// Bridge owns the translator for the lifetime of one input stream.
type Bridge struct {
	src       LineSource
	tr        *translator.Translator
	sink      sink.Sink
	logger    *slog.Logger
	rawLogger log.RawLogger
	now       func() time.Time
	stats     Stats
}

// New returns a Bridge with a fresh translator.
func New(src LineSource, cfg translator.Config, s sink.Sink, logger *slog.Logger, rawLogger log.RawLogger) *Bridge {
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	return &Bridge{
		src:       src,
		tr:        translator.New(cfg),
		sink:      s,
		logger:    logger,
		rawLogger: rawLogger,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock used to timestamp lines.
func (b *Bridge) WithClock(now func() time.Time) *Bridge {
	b.now = now
	return b
}

// Run reads lines until the source ends. Timeouts and unparsable lines are
// skipped. A sink error stops the loop and is returned. A read error after
// ctx is done is treated as a normal shutdown, since closing the source is
// how a blocked read is interrupted.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := b.src.ReadLine()
		if err != nil {
			switch {
			case errors.Is(err, source.ErrTimeout):
				b.stats.Timeouts++
				continue
			case errors.Is(err, io.EOF):
				b.logger.Info("input stream ended")
				return nil
			case ctx.Err() != nil:
				return nil
			default:
				return fmt.Errorf("read line: %w", err)
			}
		}
		if err := b.handle(ctx, line); err != nil {
			return err
		}
	}
}

func (b *Bridge) handle(ctx context.Context, line string) error {
	b.stats.Lines++
	b.rawLogger.Log(true, []byte(line))

	tok := translator.Classify(line)
	if tok.Kind == translator.TokenIgnored {
		b.stats.Ignored++
		if line != "" {
			b.logger.Debug("ignoring line", "line", line)
		}
		return nil
	}

	evs := b.tr.Handle(tok, b.now())
	b.logger.Log(ctx, log.LevelTrace, "line", "text", line, "token", tok.Kind.String(), "events", len(evs))
	for _, ev := range evs {
		if err := sink.Dispatch(b.sink, ev); err != nil {
			return fmt.Errorf("emit %s: %w", ev, err)
		}
		b.rawLogger.Log(false, []byte(ev.String()))
		if ev.Kind == translator.EventMove {
			b.stats.Moves++
		} else {
			b.stats.Clicks++
		}
	}
	return nil
}

// Stats returns the counters collected so far.
func (b *Bridge) Stats() Stats { return b.stats }

// State returns the translator state.
func (b *Bridge) State() translator.State { return b.tr.State() }

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("lines", s.Lines),
		slog.Int("ignored", s.Ignored),
		slog.Int("timeouts", s.Timeouts),
		slog.Int("clicks", s.Clicks),
		slog.Int("moves", s.Moves),
	)
}
