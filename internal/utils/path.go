package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config directory.
const AppName = "pinyinctrlf"

// UserConfigDir returns the platform config directory for pinyinctrlf under homeDir.
func UserConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, ".config", AppName)
	}
}

// FindFile looks for name in each dir in turn and returns the first hit.
// An absolute or already existing name is returned as is.
func FindFile(name string, dirs ...string) (string, error) {
	if FileExists(name) {
		return name, nil
	}
	if filepath.IsAbs(name) {
		return "", os.ErrNotExist
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if FileExists(candidate) {
			log.Debugf("Found %s in %s", name, dir)
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}
