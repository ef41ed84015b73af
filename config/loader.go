package config

import (
	"log/slog"
	"os"
)

const (
	// ProjectConfigFile is looked up in the working directory when no path is given
	ProjectConfigFile = "remapd.yaml"
	// EnvAddr overrides server.addr
	EnvAddr = "REMAP_ADDR"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. The file at path, or ./remapd.yaml when path is empty
// 3. Environment variables (REMAP_ADDR)
//
// The result is normalized and validated.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = ProjectConfigFile
	}
	fileConfig, err := LoadFromFile(path)
	switch {
	case err == nil:
		l.logger.Debug("Loaded config", slog.String("path", path))
		config.Merge(fileConfig)
	case explicit:
		return nil, err
	default:
		l.logger.Debug("No config file found, using defaults", slog.String("path", path))
	}

	if addr := os.Getenv(EnvAddr); addr != "" {
		config.Server.Addr = addr
		l.logger.Debug("Server address from environment", slog.String("addr", addr))
	}

	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
