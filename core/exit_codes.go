package core

// Exit codes for the command line tool. Signal exits are 128 + signal
// number; the others follow sysexits.h where one fits.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1

	// ExitCodeUsage is a bad argument or an input the library rejected
	// before running.
	ExitCodeUsage = 2

	// ExitCodeUnavailable is a model library that could not be started.
	ExitCodeUnavailable = 69

	// ExitCodeConfig is a configuration error.
	ExitCodeConfig = 78

	ExitCodeSIGINT  = 130
	ExitCodeSIGTERM = 143
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeUsage:
		return "usage"
	case ExitCodeUnavailable:
		return "unavailable"
	case ExitCodeConfig:
		return "configuration"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// IsSignalExit returns true if the exit code indicates a signal-based termination.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}
