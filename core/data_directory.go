package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in data directory paths.
const AppName = "xsmodels"

// StateDBName is the settings database file inside the data directory.
const StateDBName = "state.db"

// GetDataDirectory returns the per-user data directory:
//   - Windows: %APPDATA%\xsmodels
//   - elsewhere: ~/.xsmodels
func GetDataDirectory() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return AppName
			}
			return filepath.Join(home, "AppData", "Roaming", AppName)
		}
		return filepath.Join(appData, AppName)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "." + AppName
		}
		return filepath.Join(home, "."+AppName)
	}
}

// GetDataFilePath returns the full path for a file within the data directory.
func GetDataFilePath(filename string) string {
	return filepath.Join(GetDataDirectory(), filename)
}
