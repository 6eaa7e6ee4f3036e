package config

import (
	"runtime"

	"github.com/LeJamon/goTernaryMerkle/internal/codec/compression"
	"github.com/LeJamon/goTernaryMerkle/internal/codec/snapshotcodec"
	"github.com/LeJamon/goTernaryMerkle/internal/core/tmtree"
	"github.com/LeJamon/goTernaryMerkle/internal/crypto/hashing"
	"github.com/spf13/viper"
)

// setDefaults sets all default values, matching tmtree.DefaultConfig
func setDefaults(v *viper.Viper) {
	tree := tmtree.DefaultConfig()

	v.SetDefault("tree.hash_algorithm", hashing.DefaultAlgorithm)
	v.SetDefault("tree.cache_enabled", tree.CacheEnabled)
	v.SetDefault("tree.cache_size", tree.CacheSize)
	v.SetDefault("tree.parallel_threshold", tree.ParallelThreshold)
	v.SetDefault("tree.parallel_workers", runtime.GOMAXPROCS(0))
	v.SetDefault("tree.metrics_enabled", tree.MetricsEnabled)
	v.SetDefault("tree.proof_cache_size", tree.ProofCacheSize)

	v.SetDefault("snapshot.format", snapshotcodec.DefaultFormat)
	v.SetDefault("snapshot.compression", compression.None)
	v.SetDefault("snapshot.compression_level", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}
