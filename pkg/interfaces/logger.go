package interfaces

import "context"

// Logger is the leveled logger used across sessions, backends and commands.
// A go-logger instance satisfies it directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a named module such as "session" or
// "backends.redis".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry tenant and page
// fields on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
