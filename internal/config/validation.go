package config

import "fmt"

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Tree.Validate(); err != nil {
		return fmt.Errorf("tree config validation failed: %w", err)
	}
	if err := config.Snapshot.Validate(); err != nil {
		return fmt.Errorf("snapshot config validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	return nil
}
