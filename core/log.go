package core

import (
	"context"
	"io"
	"log/slog"
)

// Component identifies a subsystem for log filtering.
type Component string

// Firmware component identifiers.
const (
	ComponentTimer     Component = "timer"
	ComponentSched     Component = "sched"
	ComponentIndicator Component = "indicator"
	ComponentUSB       Component = "usb"
	ComponentFirmware  Component = "firmware"
)

// LevelTrace is more verbose than debug: per-packet and per-wait messages.
const LevelTrace = slog.LevelDebug - 4

// DebugWriter is a function type for writing log output
type DebugWriter func(string)

var (
	// logLevel controls the minimum log level
	logLevel = new(slog.LevelVar)

	// logger is the firmware-wide logger; output is discarded until a
	// platform installs a writer
	logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
)

func init() {
	logLevel.Set(slog.LevelInfo)
}

// writerFunc adapts a DebugWriter to io.Writer
type writerFunc DebugWriter

func (w writerFunc) Write(p []byte) (int, error) {
	w(string(p))
	return len(p), nil
}

// SetDebugWriter sets the platform-specific log output function.
// This allows platforms to redirect logs to UART, RTT, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		SetLogOutput(io.Discard)
		return
	}
	SetLogOutput(writerFunc(writer))
}

// SetLogOutput directs text-formatted log output to w.
func SetLogOutput(w io.Writer) {
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// SetLogLevel sets the minimum log level for all components.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// LogLevel returns the current minimum log level.
func LogLevel() slog.Level {
	return logLevel.Level()
}

// Logger returns a logger tagged with the given component.
// Callers keep the result; it is not rebuilt by later SetLogOutput calls.
func Logger(component Component) *slog.Logger {
	return logger.With("component", string(component))
}

// Trace logs at LevelTrace. When the level is disabled it returns before
// the handler formats anything; the attrs themselves are already built by
// the caller, so keep them to plain values.
func Trace(l *slog.Logger, msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if !l.Enabled(ctx, LevelTrace) {
		return
	}
	l.LogAttrs(ctx, LevelTrace, msg, attrs...)
}
