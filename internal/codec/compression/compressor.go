// Package compression provides the byte-level compressors applied to encoded
// snapshots and proofs.
package compression

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Compressor defines the interface for compression algorithms.
type Compressor interface {
	// Name returns the name of the compression algorithm.
	Name() string

	// Compress compresses the input data at the given level.
	// A level of zero selects the algorithm's default.
	Compress(data []byte, level int) ([]byte, error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)
}

// Factory is a function that creates a new compressor instance.
type Factory func() Compressor

// None is the name of the pass-through compressor.
const None = "none"

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register registers a compressor factory with the given name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[strings.ToLower(name)] = factory
}

// Get returns a new compressor instance for the given name. An empty name
// selects the pass-through compressor.
func Get(name string) (Compressor, error) {
	if name == "" {
		name = None
	}

	mu.RLock()
	factory, ok := compressors[strings.ToLower(name)]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}

	return factory(), nil
}

// Available returns the sorted names of the registered compressors.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAvailable checks if a compressor with the given name is available.
func IsAvailable(name string) bool {
	mu.RLock()
	_, ok := compressors[strings.ToLower(name)]
	mu.RUnlock()
	return ok
}

func init() {
	Register(None, func() Compressor { return &NoCompressor{} })
	Register("lz4", func() Compressor { return &LZ4Compressor{} })
}
