// Package log provides the small leveled-logging seam the builder depends
// on, shaped after the sibling log package the teacher (github.com/
// saferwall/pe) injects through Options.Logger and wraps in a *log.Helper.
package log

import (
	"fmt"
	"log"
	"os"
)

// Logger is the interface a host application implements to receive
// structured log lines from the writer. kv is an alternating key/value
// list, same convention as the teacher's logging seam.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Helper wraps a Logger with a fixed set of extra key/values, so a builder
// can do logger.With("build", "normal") once and log plain messages after.
type Helper struct {
	l  Logger
	kv []any
}

// NewHelper wraps l. A nil l is replaced by NewNopLogger().
func NewHelper(l Logger) *Helper {
	if l == nil {
		l = NewNopLogger()
	}
	return &Helper{l: l}
}

// With returns a Helper that prepends kv to every subsequent call.
func (h *Helper) With(kv ...any) *Helper {
	next := make([]any, 0, len(h.kv)+len(kv))
	next = append(next, h.kv...)
	next = append(next, kv...)
	return &Helper{l: h.l, kv: next}
}

func (h *Helper) Debug(msg string, kv ...any) { h.l.Debug(msg, append(h.kv, kv...)...) }
func (h *Helper) Info(msg string, kv ...any)  { h.l.Info(msg, append(h.kv, kv...)...) }
func (h *Helper) Warn(msg string, kv ...any)  { h.l.Warn(msg, append(h.kv, kv...)...) }
func (h *Helper) Error(msg string, kv ...any) { h.l.Error(msg, append(h.kv, kv...)...) }

// stdLogger is the default Logger, backed by the standard library's log
// package, writing to stderr with level prefixes.
type stdLogger struct {
	std *log.Logger
}

// NewStdLogger returns a Logger that writes leveled lines to stderr.
func NewStdLogger() Logger {
	return &stdLogger{std: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *stdLogger) log(level, msg string, kv ...any) {
	s.std.Println(formatLine(level, msg, kv...))
}

func (s *stdLogger) Debug(msg string, kv ...any) { s.log("debug", msg, kv...) }
func (s *stdLogger) Info(msg string, kv ...any)  { s.log("info", msg, kv...) }
func (s *stdLogger) Warn(msg string, kv ...any)  { s.log("warn", msg, kv...) }
func (s *stdLogger) Error(msg string, kv ...any) { s.log("error", msg, kv...) }

func formatLine(level, msg string, kv ...any) string {
	line := fmt.Sprintf("[%s] %s", level, msg)
	for i := 0; i+1 < len(kv); i += 2 {
		line += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	return line
}

// nopLogger discards everything; the default when no Logger is configured.
type nopLogger struct{}

// NewNopLogger returns a Logger that discards all output.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
