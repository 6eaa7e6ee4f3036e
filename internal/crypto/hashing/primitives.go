package hashing

import (
	"crypto/sha512"

	sha256 "github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Sha512Half returns the first 32 bytes of a sha512 hash of a message.
func Sha512Half(msg []byte) [Size]byte {
	h := sha512.Sum512(msg)
	var result [Size]byte
	copy(result[:], h[:Size])
	return result
}

// Sha512HalfHasher truncates SHA-512 to 256 bits.
type Sha512HalfHasher struct{}

func (Sha512HalfHasher) Name() string { return "sha512half" }

func (Sha512HalfHasher) Hash(data []byte) [Size]byte {
	return Sha512Half(data)
}

// Sha256Hasher is SHA-256 backed by the SIMD accelerated implementation.
type Sha256Hasher struct{}

func (Sha256Hasher) Name() string { return "sha256" }

func (Sha256Hasher) Hash(data []byte) [Size]byte {
	return sha256.Sum256(data)
}

// Blake3Hasher is BLAKE3 with a 256-bit output.
type Blake3Hasher struct{}

func (Blake3Hasher) Name() string { return "blake3" }

func (Blake3Hasher) Hash(data []byte) [Size]byte {
	return blake3.Sum256(data)
}

// Sha3Hasher is FIPS-202 SHA3-256.
type Sha3Hasher struct{}

func (Sha3Hasher) Name() string { return "sha3-256" }

func (Sha3Hasher) Hash(data []byte) [Size]byte {
	return sha3.Sum256(data)
}

// Keccak256Hasher is the legacy (pre-FIPS) Keccak-256.
type Keccak256Hasher struct{}

func (Keccak256Hasher) Name() string { return "keccak256" }

func (Keccak256Hasher) Hash(data []byte) [Size]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
