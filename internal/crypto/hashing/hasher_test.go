package hashing

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha512Half(t *testing.T) {
	tt := []struct {
		description string
		input       []byte
		expected    [32]uint8
	}{
		{
			description: "hash of fakeRandomString",
			input:       []byte{102, 97, 107, 101, 82, 97, 110, 100, 111, 109, 83, 116, 114, 105, 110, 103},
			expected:    [32]uint8{0xbb, 0x3e, 0xca, 0x89, 0x85, 0xe1, 0x48, 0x4f, 0xa6, 0xa2, 0x8c, 0x4b, 0x30, 0xfb, 0x0, 0x42, 0xa2, 0xcc, 0x5d, 0xf3, 0xec, 0x8d, 0xc3, 0x7b, 0x5f, 0x3d, 0x12, 0x6d, 0xdf, 0xd3, 0xca, 0x14},
		},
	}

	for _, tc := range tt {
		t.Run(tc.description, func(t *testing.T) {
			got := Sha512Half(tc.input)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestKnownVectors(t *testing.T) {
	tt := []struct {
		algorithm string
		input     string
		expected  string
	}{
		{"sha512half", "abc", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a"},
		{"sha256", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha3-256", "abc", "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{"keccak256", "", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"blake3", "", "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
	}

	for _, tc := range tt {
		t.Run(tc.algorithm, func(t *testing.T) {
			h, err := Get(tc.algorithm)
			require.NoError(t, err)
			assert.Equal(t, tc.algorithm, h.Name())

			got := h.Hash([]byte(tc.input))
			assert.Equal(t, tc.expected, hex.EncodeToString(got[:]))
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Run("DefaultAlgorithm", func(t *testing.T) {
		h, err := Get("")
		require.NoError(t, err)
		assert.Equal(t, DefaultAlgorithm, h.Name())
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		assert.True(t, IsAvailable("BLAKE3"))
		h, err := Get("Sha256")
		require.NoError(t, err)
		assert.Equal(t, "sha256", h.Name())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Get("md5")
		require.Error(t, err)
		assert.False(t, IsAvailable("md5"))
	})

	t.Run("Available", func(t *testing.T) {
		names := Available()
		assert.Contains(t, names, "sha512half")
		assert.Contains(t, names, "keccak256")
		assert.IsNonDecreasing(t, names)
	})
}
