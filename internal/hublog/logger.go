// Package hublog defines the structured logging interface shared by
// every hub component: a small set of leveled methods taking a message
// plus variadic key-value pairs, so any of slog, zap, or a test spy
// can sit behind it.
package hublog

// Logger is implemented by SlogLogger (the default, log/slog-backed)
// and ZapLogger (go.uber.org/zap-backed) in this package.
type Logger interface {
	// Info logs a normal operational event: service started, automation
	// fired, integration discovered a device.
	Info(msg string, args ...any)
	// Warn logs a condition worth noticing that did not stop anything:
	// a lagged bus subscriber, a best-effort publish failure.
	Warn(msg string, args ...any)
	// Error logs a failure a caller should know about even though the
	// hub kept running: an automation action that errored, a storage
	// failure.
	Error(msg string, args ...any)
	// Debug logs fine-grained diagnostic detail, off by default.
	Debug(msg string, args ...any)
	// With returns a Logger that prepends the given key-value pairs to
	// every subsequent call, for attaching fixed context like
	// "component"="automation-engine".
	With(args ...any) Logger
}
