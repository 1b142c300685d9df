// Package logger builds the application's slog.Logger. Production gets JSON
// at info level for log aggregation, development gets text at debug level.
// A handler decorator injects request-scoped attributes (request ID) from
// context at log time.
package logger
