package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "rtgscope"

// GetXDGDataDir returns $XDG_DATA_HOME/rtgscope, or ~/.local/share/rtgscope
// when XDG_DATA_HOME is unset.
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// GetXDGDataPath joins name onto the data directory.
func GetXDGDataPath(name string) (string, error) {
	dir, err := GetXDGDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
