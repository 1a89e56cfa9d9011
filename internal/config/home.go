package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable overriding the cachekey home directory.
const HomeEnv = "CACHEKEY_HOME"

// GetHome returns the cachekey home directory
// Priority order:
//  1. CACHEKEY_HOME environment variable (if set)
//  2. .cachekey in the current working directory (fallback)
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".cachekey")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create cachekey home directory: %w", err)
	}

	return home, nil
}

// ResolvePath makes a configured path absolute. Relative paths are resolved
// against base; an empty path stays empty.
func ResolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// GetHistoryDBPath returns the absolute path to the history database for cfg,
// resolving a relative db_path against base and creating its parent directory.
// The special path ":memory:" is returned unchanged.
func GetHistoryDBPath(cfg *Config, base string) (string, error) {
	if cfg.History.DBPath == ":memory:" {
		return cfg.History.DBPath, nil
	}

	path := ResolvePath(base, cfg.History.DBPath)
	if path == "" {
		home, err := GetHome()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, "history.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}

	return path, nil
}
