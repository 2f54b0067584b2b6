package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees console output and a rotated JSON log file at filePath.
// The file always uses JSON; the console uses the coloured encoder when
// isDev is set and JSON otherwise.
func NewMultiCore(level zapcore.LevelEnabler, filePath string, isDev bool, console zapcore.WriteSyncer) (zapcore.Core, error) {
	file, err := openFileWriter(filePath, DefaultFileWriterConfig())
	if err != nil {
		return nil, err
	}
	return NewMultiCoreWithWriters(level, console, file, isDev), nil
}

// NewMultiCoreWithWriters tees output to the given writers.
//
// Example:
//
//	var buf bytes.Buffer
//	core := NewMultiCoreWithWriters(zapcore.DebugLevel, os.Stdout, zapcore.AddSync(&buf), true)
//	logger := zap.New(core)
func NewMultiCoreWithWriters(level zapcore.LevelEnabler, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), fileWriter, level)
	return zapcore.NewTee(NewConsoleCore(level, consoleWriter, isDev), fileCore)
}

// NewConsoleCore writes to w only.
func NewConsoleCore(level zapcore.LevelEnabler, w zapcore.WriteSyncer, isDev bool) zapcore.Core {
	var enc zapcore.Encoder
	if isDev {
		enc = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		enc = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	return zapcore.NewCore(enc, w, level)
}
