package config

import (
	"fmt"

	"go.uber.org/zap"
)

// LogConfig configures the zap logger used by the CLI
type LogConfig struct {
	Level       string `toml:"level" mapstructure:"level"`
	Development bool   `toml:"development" mapstructure:"development"`
}

// Validate checks the log section
func (l *LogConfig) Validate() error {
	if _, err := zap.ParseAtomicLevel(l.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return nil
}

// NewLogger builds a logger from the log section.
func (l *LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	var zc zap.Config
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	return zc.Build()
}
