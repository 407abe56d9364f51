package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "orgclone"

	// Version is reported by the version command
	Version = "0.1.0"

	historyFile = "history.bolt"
	lockFile    = "run.lock"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the orgclone configuration directory path.
// Linux: ~/.config/orgclone (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\orgclone (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// EnsureApplicationDirectory returns the configuration directory, creating it if needed
func EnsureApplicationDirectory() (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// HistoryPath returns the location of the run history database
func HistoryPath() (string, error) {
	dir, err := EnsureApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, historyFile), nil
}

// LockPath returns the location of the lock file held during a batch run
func LockPath() (string, error) {
	dir, err := EnsureApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, lockFile), nil
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		// Windows: use AppData\Local (via UserCacheDir)
		baseDir, err = os.UserCacheDir()
	default:
		// Linux/others: use ~/.config (via UserConfigDir)
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
	}

	appDir = filepath.Join(baseDir, AppName)
}
