// Package cli implements the trackviz command-line interface.
//
// The CLI renders chart artifacts from a track table, inspects how a table
// normalizes, explores the interaction state machine in the terminal and
// runs the HTTP server. It is built with cobra; logs go through
// charmbracelet/log and user-facing output is styled with lipgloss.
//
// # Commands
//
//   - render: write html, svg, png or json artifacts
//   - inspect: print normalization stats and the top records
//   - explore: drive the chart's hover and click behavior from the keyboard
//   - serve: start the HTTP server
//   - cache: clear or locate the cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a render. Each step logs at debug level with the time
// since the previous step; done logs the summary line at info level.
// Not safe for concurrent use.
type progress struct {
	logger      *log.Logger
	start, last time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// step logs a finished stage, e.g. "pipeline took=12ms kept=300".
func (p *progress) step(stage string, kv ...any) {
	now := time.Now()
	p.logger.Debug(stage, append([]any{"took", now.Sub(p.last).Round(time.Millisecond)}, kv...)...)
	p.last = now
}

// done logs msg with kv and the total elapsed time.
func (p *progress) done(msg string, kv ...any) {
	p.logger.Info(msg, append(kv, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for the command's helpers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the attached logger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, _ := ctx.Value(loggerKey{}).(*log.Logger); l != nil {
		return l
	}
	return log.Default()
}
