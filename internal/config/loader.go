package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TMTREE_TREE_HASH_ALGORITHM.
const EnvPrefix = "TMTREE"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (toml, yaml or json), skipped when path is empty
// 3. Environment variables (TMTREE_ prefix)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load configuration file
	if path != "" {
		if err := loadConfigFile(v, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 3. Set up environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	// 5. Validate
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadConfigFile reads the configuration file at configPath
func loadConfigFile(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}

// LoadDefaultConfig loads DefaultConfigPath when it exists and falls back to
// defaults and environment otherwise.
func LoadDefaultConfig() (*Config, error) {
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return LoadConfig(DefaultConfigPath)
	}
	return LoadConfig("")
}

// SaveExampleConfig writes a configuration file holding every default value
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}
