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
	AppName = "rael"

	// UserAgent is sent with every remote provider request
	UserAgent = "rael-cli"

	// TokenFileName is the name of the cached bearer token file
	TokenFileName = "auth-token"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the rael configuration directory path.
// Linux: ~/.config/rael (via os.UserConfigDir)
// macOS: ~/Library/Application Support/rael (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\rael (via os.UserCacheDir)
//
// The directory is not created; callers that write into it do that.
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// DirFor resolves the application directory for the given GOOS and home
// directory without touching the environment.
func DirFor(goos, home string) string {
	switch goos {
	case "windows":
		return filepath.Join(home, "AppData", "Local", AppName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName)
	default:
		return filepath.Join(home, ".config", AppName)
	}
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
		// Linux/macOS: ~/.config or ~/Library/Application Support
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
