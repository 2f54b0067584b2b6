package core

import (
	"errors"
	"fmt"
)

// ConfigError is a configuration problem with an instruction for fixing it.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingConfig  = "MISSING_CONFIG"
	ErrCodeInvalidValue   = "INVALID_VALUE"
	ErrCodeInvalidProfile = "INVALID_PROFILE"
	ErrCodeHeadasMissing  = "HEADAS_MISSING"
	ErrCodeStateDir       = "STATE_DIR"
)

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in the environment or your .env file", varName),
	}
}

// ErrInvalidValue returns an error for an environment variable that does
// not parse.
func ErrInvalidValue(varName, value, hint string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s '%s'", varName, value),
		Action:  hint,
	}
}

// ErrHeadasMissing returns an error for a HEADAS that is unset or not a
// directory.
func ErrHeadasMissing(path string) *ConfigError {
	msg := "HEADAS is not set"
	if path != "" {
		msg = fmt.Sprintf("HEADAS directory not found: %s", path)
	}
	return &ConfigError{
		Code:    ErrCodeHeadasMissing,
		Message: msg,
		Action:  "Source the HEASoft init script, or set HEADAS to the installation directory",
	}
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}

// ErrStateDir returns an error for a state database directory that cannot
// be created or written.
func ErrStateDir(dir string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeStateDir,
		Message: fmt.Sprintf("State directory %s is not usable: %v", dir, cause),
		Action:  fmt.Sprintf("Create it, or point %s somewhere writable", EnvStateDB),
	}
}
