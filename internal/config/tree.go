package config

import (
	"fmt"

	"github.com/LeJamon/goTernaryMerkle/internal/crypto/hashing"
)

// TreeConfig holds the tunables handed to every tree the tool creates
type TreeConfig struct {
	HashAlgorithm     string `toml:"hash_algorithm" mapstructure:"hash_algorithm"`
	CacheEnabled      bool   `toml:"cache_enabled" mapstructure:"cache_enabled"`
	CacheSize         int    `toml:"cache_size" mapstructure:"cache_size"`
	ParallelThreshold int    `toml:"parallel_threshold" mapstructure:"parallel_threshold"`
	ParallelWorkers   int    `toml:"parallel_workers" mapstructure:"parallel_workers"` // 0 means no limit
	MetricsEnabled    bool   `toml:"metrics_enabled" mapstructure:"metrics_enabled"`
	ProofCacheSize    int    `toml:"proof_cache_size" mapstructure:"proof_cache_size"` // 0 disables the cache
}

// Validate checks the tree section
func (t *TreeConfig) Validate() error {
	if !hashing.IsAvailable(t.HashAlgorithm) {
		return fmt.Errorf("unknown hash_algorithm %q (available: %v)", t.HashAlgorithm, hashing.Available())
	}
	if t.CacheEnabled && t.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive when the cache is enabled, got %d", t.CacheSize)
	}
	if t.ParallelThreshold < 0 {
		return fmt.Errorf("parallel_threshold cannot be negative, got %d", t.ParallelThreshold)
	}
	if t.ParallelWorkers < 0 {
		return fmt.Errorf("parallel_workers cannot be negative, got %d", t.ParallelWorkers)
	}
	if t.ProofCacheSize < 0 {
		return fmt.Errorf("proof_cache_size cannot be negative, got %d", t.ProofCacheSize)
	}
	return nil
}
