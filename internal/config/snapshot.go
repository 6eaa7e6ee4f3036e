package config

import (
	"fmt"

	"github.com/LeJamon/goTernaryMerkle/internal/codec/compression"
	"github.com/LeJamon/goTernaryMerkle/internal/codec/snapshotcodec"
)

// SnapshotConfig selects how snapshots and proofs are written to disk
type SnapshotConfig struct {
	Format           string `toml:"format" mapstructure:"format"`
	Compression      string `toml:"compression" mapstructure:"compression"`
	CompressionLevel int    `toml:"compression_level" mapstructure:"compression_level"`
}

// Validate checks the snapshot section
func (s *SnapshotConfig) Validate() error {
	if !snapshotcodec.IsFormat(s.Format) {
		return fmt.Errorf("unknown snapshot format %q (available: %v)", s.Format, snapshotcodec.Formats())
	}
	if !compression.IsAvailable(s.Compression) {
		return fmt.Errorf("unknown compression %q (available: %v)", s.Compression, compression.Available())
	}
	if s.CompressionLevel < 0 {
		return fmt.Errorf("compression_level cannot be negative, got %d", s.CompressionLevel)
	}
	return nil
}
