package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, rounded to the millisecond, and keyvals.
// Example output: "decoded library.json (12ms) objects=420"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports codec and store events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnEncodeStart(ctx context.Context, uri string) {
	h.logger.Debug("encode start", "uri", uri)
}

func (h *logHooks) OnEncodeComplete(ctx context.Context, uri string, objects, size int, d time.Duration, err error) {
	h.logger.Debug("encode complete", "uri", uri, "objects", objects, "bytes", size, "duration", d, "err", err)
}

func (h *logHooks) OnDecodeStart(ctx context.Context, uri string, size int) {
	h.logger.Debug("decode start", "uri", uri, "bytes", size)
}

func (h *logHooks) OnDecodeComplete(ctx context.Context, uri string, objects int, d time.Duration, err error) {
	h.logger.Debug("decode complete", "uri", uri, "objects", objects, "duration", d, "err", err)
}

func (h *logHooks) OnStoreHit(ctx context.Context, backend string) {
	h.logger.Debug("store hit", "backend", backend)
}

func (h *logHooks) OnStoreMiss(ctx context.Context, backend string) {
	h.logger.Debug("store miss", "backend", backend)
}

func (h *logHooks) OnStoreSet(ctx context.Context, backend string, size int) {
	h.logger.Debug("store set", "backend", backend, "bytes", size)
}
