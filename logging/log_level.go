package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// LevelNames lists the accepted values of XSMODELS_LOG_LEVEL.
const LevelNames = "debug, info, warn, error, quiet or verbose"

// ParseLevel reads a log level name. Besides zap's names it accepts
// "verbose" (debug) and "quiet" (errors only), matching the CLI flags.
// Fatal and panic are refused: the library never logs at those levels.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error", "quiet":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q, use %s", s, LevelNames)
}

// LevelFromEnv returns the level named by the environment variable key, or
// def when it is unset or empty.
func LevelFromEnv(key string, def zapcore.Level) (zapcore.Level, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	return ParseLevel(v)
}
