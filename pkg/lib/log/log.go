// Package log provides the logging interface for the deskshell SDK.
//
// The SDK accepts any implementation of [Logger], set it in lib.Config.Logger.
// Logging is disabled by default ([Noop]).
//
// The backend server output is forwarded line by line through the logger: stdout
// at info level and stderr at warning level, both with a "stream" value. Implement
// at least Infof and Warningf to see it:
//
//	type slogLogger struct{ kv []any }
//
//	func (l slogLogger) Infof(format string, args ...any)    { slog.Info(fmt.Sprintf(format, args...), l.kv...) }
//	func (l slogLogger) Warningf(format string, args ...any) { slog.Warn(fmt.Sprintf(format, args...), l.kv...) }
//	// ... remaining methods
package log

import "github.com/slok/deskshell/internal/log"

// Logger is the interface that loggers must implement for the SDK.
type Logger = log.Logger

// Kv is the structured logging key-value set received by Logger.WithValues.
type Kv = log.Kv

// Noop is a logger that discards all log output.
var Noop = log.Noop
