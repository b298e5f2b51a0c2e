// Package paths provides centralized path resolution for mview's config,
// state, and runtime files.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/mview/config.yaml   (override: MVIEW_CONFIG_DIR)
//	State:   ~/.local/state/mview/         (override: MVIEW_STATE_DIR)
//	Runtime: <user cache dir>/mview/       (override: MVIEW_RUNTIME_DIR)
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	configDirOnce   sync.Once
	configDirCached string

	stateDirOnce   sync.Once
	stateDirCached string

	runtimeDirOnce   sync.Once
	runtimeDirCached string
)

// ConfigDir resolves the config directory.
// Priority: MVIEW_CONFIG_DIR env > ~/.config/mview/
func ConfigDir() string {
	configDirOnce.Do(func() {
		if env := os.Getenv("MVIEW_CONFIG_DIR"); env != "" {
			configDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				configDirCached = "."
			} else {
				configDirCached = filepath.Join(home, ".config", "mview")
			}
		}
	})
	return configDirCached
}

// StateDir resolves the state directory.
// Priority: MVIEW_STATE_DIR env > ~/.local/state/mview/
func StateDir() string {
	stateDirOnce.Do(func() {
		if env := os.Getenv("MVIEW_STATE_DIR"); env != "" {
			stateDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				stateDirCached = "."
			} else {
				stateDirCached = filepath.Join(home, ".local", "state", "mview")
			}
		}
	})
	return stateDirCached
}

// RuntimeDir resolves the runtime directory holding the daemon socket.
// Priority: MVIEW_RUNTIME_DIR env > <user cache dir>/mview/
func RuntimeDir() string {
	runtimeDirOnce.Do(func() {
		if env := os.Getenv("MVIEW_RUNTIME_DIR"); env != "" {
			runtimeDirCached = env
		} else {
			cache, err := os.UserCacheDir()
			if err != nil {
				runtimeDirCached = os.TempDir()
			} else {
				runtimeDirCached = filepath.Join(cache, "mview")
			}
		}
	})
	return runtimeDirCached
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StatePath returns the full path to a state file (e.g. "state.json").
func StatePath(filename string) string {
	return filepath.Join(StateDir(), filename)
}

// SocketPath returns the daemon socket path. The socket is also the
// single-instance token: whichever process binds it is the daemon.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "mview.sock")
}

// EnsureStateDir creates the state directory if it doesn't exist and returns its path.
func EnsureStateDir() (string, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureRuntimeDir creates the runtime directory if it doesn't exist and returns its path.
// 0700 because the socket accepts file paths from whoever can connect.
func EnsureRuntimeDir() (string, error) {
	dir := RuntimeDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create runtime dir %s: %w", dir, err)
	}
	return dir, nil
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	stateDirOnce = sync.Once{}
	stateDirCached = ""
	runtimeDirOnce = sync.Once{}
	runtimeDirCached = ""
}
