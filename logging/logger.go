package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects how a Logger writes.
type Config struct {
	// Development switches the console to the coloured human-readable
	// encoder and lowers the default level to debug.
	Development bool

	// Level overrides the default level when set.
	Level *zapcore.Level

	// FilePath enables the rotated JSON log file. Empty disables it.
	FilePath string
	File     FileWriterConfig

	// Console is where console output goes. Defaults to os.Stdout.
	Console zapcore.WriteSyncer
}

// Logger wraps zap.Logger with a level that can be changed at runtime.
//
// Example:
//
//	logger, err := NewLogger(Config{FilePath: "xsmodels.log"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info("server started", zap.String("addr", ":8080"))
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
	level zap.AtomicLevel

	isDevelopment bool
	logFilePath   string
}

// NewLogger builds a Logger from cfg.
func NewLogger(cfg Config) (*Logger, error) {
	lvl := InfoLevel
	if cfg.Development {
		lvl = DebugLevel
	}
	if cfg.Level != nil {
		lvl = *cfg.Level
	}
	level := zap.NewAtomicLevelAt(lvl)

	console := cfg.Console
	if console == nil {
		console = zapcore.Lock(os.Stdout)
	}

	var core zapcore.Core
	if cfg.FilePath != "" {
		fileConfig := cfg.File
		if fileConfig == (FileWriterConfig{}) {
			fileConfig = DefaultFileWriterConfig()
		}
		file, err := openFileWriter(cfg.FilePath, fileConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create log core: %w", err)
		}
		core = NewMultiCoreWithWriters(level, console, file, cfg.Development)
	} else {
		core = NewConsoleCore(level, console, cfg.Development)
	}

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{
		zap:           z,
		sugar:         z.Sugar(),
		level:         level,
		isDevelopment: cfg.Development,
		logFilePath:   cfg.FilePath,
	}, nil
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// Infof logs a formatted message at InfoLevel.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// Errorf logs a formatted message at ErrorLevel.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

// With creates a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	z := l.zap.With(fields...)
	return l.derive(z)
}

// Named adds a sub-logger name, shown in the "logger" field.
func (l *Logger) Named(name string) *Logger {
	return l.derive(l.zap.Named(name))
}

func (l *Logger) derive(z *zap.Logger) *Logger {
	return &Logger{
		zap:           z,
		sugar:         z.Sugar(),
		level:         l.level,
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// SetLevel changes the level of this logger and every logger derived from
// it.
func (l *Logger) SetLevel(level zapcore.Level) { l.level.SetLevel(level) }

// Level returns the current level.
func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// Zap returns the underlying zap.Logger without the caller skip, for
// handing to packages that take a *zap.Logger.
func (l *Logger) Zap() *zap.Logger { return l.zap.WithOptions(zap.AddCallerSkip(-1)) }

// Sugar returns the underlying sugared logger.
func (l *Logger) Sugar() *zap.SugaredLogger { return l.sugar }

func (l *Logger) IsDevelopment() bool { return l.isDevelopment }
func (l *Logger) LogFilePath() string { return l.logFilePath }
