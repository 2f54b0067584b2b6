package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// JSON keys of the file log. Model call keys come from ModelCallFields.
const (
	FieldTimestamp  = "ts"
	FieldLevel      = "level"
	FieldSource     = "logger"
	FieldMessage    = "msg"
	FieldStacktrace = "stack"
	FieldCaller     = "caller"
)

// NewEncoderConfig is the file encoder: RFC 3339 timestamps with
// milliseconds, lowercase levels, and durations in milliseconds since model
// evaluations rarely take a second.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        FieldTimestamp,
		LevelKey:       FieldLevel,
		NameKey:        FieldSource,
		CallerKey:      FieldCaller,
		MessageKey:     FieldMessage,
		StacktraceKey:  FieldStacktrace,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// NewConsoleEncoderConfig is the terminal encoder. The caller is left out;
// the logger name ("xspec", "api", "shutdown") says where a line came from.
func NewConsoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        FieldTimestamp,
		LevelKey:       FieldLevel,
		NameKey:        FieldSource,
		MessageKey:     FieldMessage,
		StacktraceKey:  FieldStacktrace,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    paddedColorLevelEncoder,
		EncodeTime:     shortTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     bracketNameEncoder,
	}
}

func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// paddedColorLevelEncoder keeps console columns aligned: "INFO " and
// "ERROR" take the same width.
func paddedColorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	s := l.CapitalString()
	for len(s) < 5 {
		s += " "
	}
	color, ok := levelColors[l]
	if !ok {
		enc.AppendString(s)
		return
	}
	enc.AppendString(color + s + "\x1b[0m")
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: "\x1b[35m",
	zapcore.InfoLevel:  "\x1b[34m",
	zapcore.WarnLevel:  "\x1b[33m",
	zapcore.ErrorLevel: "\x1b[31m",
	zapcore.FatalLevel: "\x1b[31m",
}

func bracketNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]")
}
