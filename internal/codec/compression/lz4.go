package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
)

// NoCompressor passes data through unchanged.
type NoCompressor struct{}

func (c *NoCompressor) Name() string {
	return None
}

// Compress returns a copy of data.
func (c *NoCompressor) Compress(data []byte, level int) ([]byte, error) {
	return append([]byte{}, data...), nil
}

// Decompress returns a copy of data.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

// LZ4Compressor writes the LZ4 frame format. Frames carry their own content
// size and checksums, so decompression needs no size hint.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data into a single LZ4 frame.
func (c *LZ4Compressor) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	zw.Header.CompressionLevel = level

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reads a complete LZ4 frame.
func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return out, nil
}
