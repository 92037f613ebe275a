package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts (-v, -vv, ...).
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + progress, startup, connection events
	VerbosityDebug = 2 // -vv: + request details, timing, document sizes
	VerbosityTrace = 3 // -vvv: + full message flow
)

// VerbosityToLevel maps verbosity flag counts to zap log levels.
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2+ (-vv)  -> DebugLevel (+ debug messages)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LevelName returns a human-readable name for a verbosity flag count.
func LevelName(verbosity int) string {
	switch {
	case verbosity <= VerbosityUser:
		return "user"
	case verbosity == VerbosityInfo:
		return "info"
	case verbosity == VerbosityDebug:
		return "debug"
	default:
		return "trace"
	}
}
