// Package hashing provides the fixed-width digest primitives used to
// authenticate tree content. Every primitive is deterministic, produces a
// 32-byte digest and accepts input of any length.
package hashing

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Size is the digest width produced by every registered primitive.
const Size = 32

// Hasher is a 32-byte digest primitive.
type Hasher interface {
	// Name returns the registry name of the primitive.
	Name() string

	// Hash returns the digest of data.
	Hash(data []byte) [Size]byte
}

// Factory creates a new primitive instance.
type Factory func() Hasher

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "sha512half"

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers a primitive factory under name. Names are case-insensitive.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[strings.ToLower(name)] = factory
}

// Get returns a new primitive for the given name.
func Get(name string) (Hasher, error) {
	if name == "" {
		name = DefaultAlgorithm
	}

	mu.RLock()
	factory, ok := factories[strings.ToLower(name)]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown hash algorithm: %s", name)
	}

	return factory(), nil
}

// Available returns the sorted list of registered primitive names.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAvailable checks if a primitive with the given name is registered.
func IsAvailable(name string) bool {
	mu.RLock()
	_, ok := factories[strings.ToLower(name)]
	mu.RUnlock()
	return ok
}

func init() {
	Register("sha512half", func() Hasher { return Sha512HalfHasher{} })
	Register("sha256", func() Hasher { return Sha256Hasher{} })
	Register("blake3", func() Hasher { return Blake3Hasher{} })
	Register("sha3-256", func() Hasher { return Sha3Hasher{} })
	Register("keccak256", func() Hasher { return Keccak256Hasher{} })
}
