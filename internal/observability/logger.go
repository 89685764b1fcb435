// Package observability defines shared logging and metrics primitives.
package observability

// Logger captures structured logging behaviours shared across layers.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key/value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

var defaultLogger Logger = noopLogger{}

// SetLogger overrides the global logger used by the bridge.
func SetLogger(logger Logger) {
	if logger == nil {
		defaultLogger = noopLogger{}
		return
	}
	defaultLogger = logger
}

// Log returns the current global logger instance.
func Log() Logger {
	return defaultLogger
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}

// FuncLogger adapts a bare log function into a Logger. Embedding
// applications that only want a print hook can plug one in without
// implementing the full interface.
type FuncLogger func(level, msg string, fields ...Field)

// Debug forwards the message at debug level.
func (f FuncLogger) Debug(msg string, fields ...Field) { f("debug", msg, fields...) }

// Info forwards the message at info level.
func (f FuncLogger) Info(msg string, fields ...Field) { f("info", msg, fields...) }

// Error forwards the message at error level.
func (f FuncLogger) Error(msg string, fields ...Field) { f("error", msg, fields...) }
