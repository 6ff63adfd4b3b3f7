package fsutil

import (
	"os"
	"path/filepath"
)

// AppName is the name of the application used in paths.
const AppName = "gnssget"

// GetConfigDir returns the platform-specific configuration directory for the application.
// On Linux: ~/.config/gnssget/ (or $XDG_CONFIG_HOME/gnssget/)
// On macOS: ~/Library/Application Support/gnssget/
// On Windows: %AppData%\gnssget\
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
