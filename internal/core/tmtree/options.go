package tmtree

import (
	"runtime"

	"github.com/LeJamon/goTernaryMerkle/internal/crypto/hashing"
	"go.uber.org/zap"
)

// Config holds the tunables of a tree instance.
type Config struct {
	// Hasher is the digest primitive. Nil selects hashing.DefaultAlgorithm.
	Hasher hashing.Hasher

	// CacheEnabled turns on the build-scoped leaf-hash cache.
	CacheEnabled bool
	// CacheSize bounds the leaf-hash cache (entries).
	CacheSize int

	// ParallelThreshold is the minimum layer length at which parent digests
	// are computed concurrently. Zero or negative disables the parallel path.
	ParallelThreshold int
	// ParallelWorkers limits the number of concurrent combine tasks.
	ParallelWorkers int

	// MetricsEnabled turns on the metrics collector.
	MetricsEnabled bool

	// ProofCacheSize bounds the generated-proof cache. Zero disables it.
	ProofCacheSize int
}

// DefaultConfig returns the configuration used by New when no option overrides it.
func DefaultConfig() Config {
	return Config{
		Hasher:            hashing.Sha512HalfHasher{},
		CacheEnabled:      true,
		CacheSize:         DefaultCacheSize,
		ParallelThreshold: 3 * 1024,
		ParallelWorkers:   runtime.GOMAXPROCS(0),
		MetricsEnabled:    false,
		ProofCacheSize:    256,
	}
}

// Option configures a Tree.
type Option func(*Tree)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(t *Tree) {
		t.cfg = cfg
	}
}

// WithHasher selects the digest primitive.
func WithHasher(h hashing.Hasher) Option {
	return func(t *Tree) {
		t.cfg.Hasher = h
	}
}

// WithCache enables or disables the build-scoped leaf cache and sets its bound.
func WithCache(enabled bool, size int) Option {
	return func(t *Tree) {
		t.cfg.CacheEnabled = enabled
		t.cfg.CacheSize = size
	}
}

// WithParallelism sets the parallel build threshold and worker limit.
func WithParallelism(threshold, workers int) Option {
	return func(t *Tree) {
		t.cfg.ParallelThreshold = threshold
		t.cfg.ParallelWorkers = workers
	}
}

// WithMetrics enables or disables metrics collection.
func WithMetrics(enabled bool) Option {
	return func(t *Tree) {
		t.cfg.MetricsEnabled = enabled
	}
}

// WithProofCache sets the proof cache bound. Zero disables the cache.
func WithProofCache(size int) Option {
	return func(t *Tree) {
		t.cfg.ProofCacheSize = size
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(t *Tree) {
		if log != nil {
			t.log = log
		}
	}
}
