package core

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"

	"xsmodels/logging"
)

// Environment variables read by LoadConfig.
const (
	EnvHeadas    = "HEADAS"
	EnvStateDB   = "XSMODELS_STATE_DB"
	EnvLogFile   = "XSMODELS_LOG_FILE"
	EnvLogLevel  = "XSMODELS_LOG_LEVEL"
	EnvDevMode   = "XSMODELS_DEV_MODE"
	EnvProfile   = "XSMODELS_PROFILE"
	EnvAddr      = "XSMODELS_ADDR"
	EnvSpectrum  = "XSMODELS_SPECTRUM"
	EnvHistory   = "XSMODELS_HISTORY_DAYS"
	EnvRecordAll = "XSMODELS_RECORD_CALLS"
	EnvTableDir  = "XSMODELS_TABLE_DIR"
)

// Config holds the process configuration.
type Config struct {
	// Headas is the HEASoft installation. It is not required here: the
	// model library checks for it the first time it is used.
	Headas string

	// StateDB is the settings database used by the reference backend.
	StateDB string

	LogFile  string
	LogLevel zapcore.Level
	DevMode  bool

	// ProfilePath is a YAML settings profile applied at start-up.
	ProfilePath string

	// Addr is the listen address for the HTTP server.
	Addr string

	// DefaultSpectrum is used for calls that do not name a spectrum.
	DefaultSpectrum int

	// RecordCalls persists every evaluation to the state database.
	RecordCalls bool

	// HistoryDays is how long persisted calls are kept.
	HistoryDays int

	// TableDir holds the table-model files the HTTP server may open. Empty
	// disables table evaluation over HTTP.
	TableDir string
}

// LoadConfig reads the configuration from the environment. Callers load
// .env first if they want one.
func LoadConfig() (*Config, error) {
	devMode := ParseBoolEnv(EnvDevMode, false)
	defaultLevel := zapcore.InfoLevel
	if devMode {
		defaultLevel = zapcore.DebugLevel
	}

	cfg := &Config{
		Headas:          os.Getenv(EnvHeadas),
		StateDB:         GetEnvOrDefault(EnvStateDB, GetDataFilePath(StateDBName)),
		LogFile:         os.Getenv(EnvLogFile),
		LogLevel:        defaultLevel,
		DevMode:         devMode,
		ProfilePath:     os.Getenv(EnvProfile),
		Addr:            GetEnvOrDefault(EnvAddr, "127.0.0.1:8642"),
		DefaultSpectrum: ParseIntEnv(EnvSpectrum, 1),
		RecordCalls:     ParseBoolEnv(EnvRecordAll, false),
		HistoryDays:     ParseIntEnv(EnvHistory, 7),
		TableDir:        os.Getenv(EnvTableDir),
	}

	lvl, err := logging.LevelFromEnv(EnvLogLevel, defaultLevel)
	if err != nil {
		return nil, ErrInvalidValue(EnvLogLevel, os.Getenv(EnvLogLevel), "use "+logging.LevelNames)
	}
	cfg.LogLevel = lvl
	if cfg.DefaultSpectrum < 1 {
		return nil, ErrInvalidValue(EnvSpectrum, fmt.Sprint(cfg.DefaultSpectrum), "spectrum numbers start at 1")
	}
	if cfg.HistoryDays < 1 {
		return nil, ErrInvalidValue(EnvHistory, fmt.Sprint(cfg.HistoryDays), "keep history for at least one day")
	}
	return cfg, nil
}

// LoadProfile reads the profile named by ProfilePath, or returns nil when
// none is configured.
func (c *Config) LoadProfile() (*Profile, error) {
	if c.ProfilePath == "" {
		return nil, nil
	}
	p, err := LoadProfile(c.ProfilePath)
	if err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeInvalidProfile,
			Message: err.Error(),
			Action:  fmt.Sprintf("Fix the file or unset %s", EnvProfile),
		}
	}
	return p, nil
}
