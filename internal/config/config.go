package config

import (
	"fmt"

	"github.com/LeJamon/goTernaryMerkle/internal/codec/snapshotcodec"
	"github.com/LeJamon/goTernaryMerkle/internal/core/tmtree"
	"github.com/LeJamon/goTernaryMerkle/internal/crypto/hashing"
	"go.uber.org/zap"
)

// Config represents the complete tmtree configuration
type Config struct {
	Tree     TreeConfig     `toml:"tree" mapstructure:"tree"`
	Snapshot SnapshotConfig `toml:"snapshot" mapstructure:"snapshot"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

// DefaultConfigPath is the file looked up when no path is given on the command line.
const DefaultConfigPath = "tmtree.toml"

// GetConfigPath returns the path of the file the configuration was read from,
// or "" when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// TreeOptions converts the tree section into tmtree options. The logger is
// passed through as-is; nil keeps the tree silent.
func (c *Config) TreeOptions(logger *zap.Logger) ([]tmtree.Option, error) {
	hasher, err := hashing.Get(c.Tree.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	opts := []tmtree.Option{
		tmtree.WithHasher(hasher),
		tmtree.WithCache(c.Tree.CacheEnabled, c.Tree.CacheSize),
		tmtree.WithParallelism(c.Tree.ParallelThreshold, c.Tree.ParallelWorkers),
		tmtree.WithMetrics(c.Tree.MetricsEnabled),
		tmtree.WithProofCache(c.Tree.ProofCacheSize),
	}
	if logger != nil {
		opts = append(opts, tmtree.WithLogger(logger))
	}
	return opts, nil
}

// Codec returns the snapshot codec selected by the snapshot section.
func (c *Config) Codec() (*snapshotcodec.Codec, error) {
	codec, err := snapshotcodec.New(c.Snapshot.Format, c.Snapshot.Compression,
		snapshotcodec.WithCompressionLevel(c.Snapshot.CompressionLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot codec: %w", err)
	}
	return codec, nil
}
