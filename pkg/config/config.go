// Package config holds mview's on-disk configuration and persisted viewer
// state. The YAML config is read-only at runtime; viewer state is written
// back on shutdown.
package config

import (
	"github.com/b/mview/pkg/paths"
)

// DefaultLargeFileThreshold is the size above which a document is shown in
// large-file mode (sections collapsed) unless truncation is disabled.
const DefaultLargeFileThreshold = 500 * 1024

type Config struct {
	// NoTruncate renders whole files regardless of size. The --no-truncate
	// CLI flag ORs with this; the flag wins on conflict.
	NoTruncate bool `yaml:"no_truncate"`

	// LargeFileThreshold overrides the size threshold, in bytes.
	LargeFileThreshold int64 `yaml:"large_file_threshold"`

	// Extensions toggles optional document kinds.
	Extensions Extensions `yaml:"extensions"`

	// Preview configures the localhost viewer.
	Preview Preview `yaml:"preview"`
}

type Extensions struct {
	PlantUML bool `yaml:"plantuml"` // Render .puml/.plantuml source in the preview
}

type Preview struct {
	Port int `yaml:"port"` // Preview server port (default: 6419)
}

func applyDefaults(cfg *Config) {
	if cfg.LargeFileThreshold <= 0 {
		cfg.LargeFileThreshold = DefaultLargeFileThreshold
	}
	if cfg.Preview.Port <= 0 {
		cfg.Preview.Port = 6419
	}
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func DefaultConfigPath() string {
	return paths.ConfigPath()
}
