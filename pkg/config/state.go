package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/b/mview/pkg/paths"
)

// ViewerState is persisted across daemon restarts so a bare `mview`
// invocation reopens the last viewed file.
type ViewerState struct {
	LastFile string `json:"last_file,omitempty"`
	Port     int    `json:"port,omitempty"`
}

func StateFilePath() string {
	return paths.StatePath("state.json")
}

// LoadState reads persisted viewer state. A missing or unreadable file
// yields the zero state; restarts must never fail on stale state.
func LoadState(path string) ViewerState {
	var st ViewerState
	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return ViewerState{}
	}
	return st
}

// SaveState writes viewer state, creating the state directory if needed.
func SaveState(path string, st ViewerState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
