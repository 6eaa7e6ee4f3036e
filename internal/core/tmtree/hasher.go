package tmtree

import (
	"github.com/LeJamon/goTernaryMerkle/internal/crypto/hashing"
)

// HashEngine derives leaf digests and parent digests from a hashing primitive.
// Parent digests are the primitive applied to the plain concatenation of the
// child digests in child order; no level or domain prefix is added.
type HashEngine struct {
	hasher hashing.Hasher
}

// NewHashEngine wraps the given primitive. A nil primitive selects the default.
func NewHashEngine(h hashing.Hasher) *HashEngine {
	if h == nil {
		h = hashing.Sha512HalfHasher{}
	}
	return &HashEngine{hasher: h}
}

// Algorithm returns the name of the underlying primitive.
func (e *HashEngine) Algorithm() string {
	return e.hasher.Name()
}

// LeafHash returns the digest of a leaf's raw content.
func (e *HashEngine) LeafHash(data []byte) [32]byte {
	return e.hasher.Hash(data)
}

// Combine returns the parent digest of the given ordered child digests.
// A single child is combined as-is (see the single-child group case in Build).
func (e *HashEngine) Combine(children ...[32]byte) [32]byte {
	if len(children) > BranchFactor {
		joined := make([]byte, 0, len(children)*32)
		for i := range children {
			joined = append(joined, children[i][:]...)
		}
		return e.hasher.Hash(joined)
	}

	var buf [BranchFactor * 32]byte
	n := 0
	for i := range children {
		n += copy(buf[n:], children[i][:])
	}
	return e.hasher.Hash(buf[:n])
}
