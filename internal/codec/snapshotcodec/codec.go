// Package snapshotcodec turns tree snapshots and proofs into bytes and back.
//
// A Codec pairs a wire format (json, msgpack or cbor) with a compressor from
// the compression registry. Decoding must use the same pairing as encoding.
package snapshotcodec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LeJamon/goTernaryMerkle/internal/codec/compression"
	"github.com/LeJamon/goTernaryMerkle/internal/core/tmtree"
	"github.com/ugorji/go/codec"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatCBOR    = "cbor"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatJSON

var handles = map[string]codec.Handle{
	FormatJSON:    newJSONHandle(),
	FormatMsgpack: newMsgpackHandle(),
	FormatCBOR:    &codec.CborHandle{},
}

func newJSONHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.Indent = 2
	h.HTMLCharsAsIs = true
	return h
}

func newMsgpackHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	return h
}

// Formats returns the sorted names of the supported formats.
func Formats() []string {
	names := make([]string, 0, len(handles))
	for name := range handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFormat reports whether name is a supported format.
func IsFormat(name string) bool {
	_, ok := handles[strings.ToLower(name)]
	return ok
}

// Codec encodes and decodes snapshots and proofs.
type Codec struct {
	format     string
	handle     codec.Handle
	compressor compression.Compressor
	level      int
}

// Option configures a Codec.
type Option func(*Codec)

// WithCompressionLevel sets the level handed to the compressor.
func WithCompressionLevel(level int) Option {
	return func(c *Codec) {
		c.level = level
	}
}

// New returns a codec for the given format and compressor names. Empty names
// select DefaultFormat and no compression.
func New(format, compressor string, opts ...Option) (*Codec, error) {
	if format == "" {
		format = DefaultFormat
	}
	format = strings.ToLower(format)

	h, ok := handles[format]
	if !ok {
		return nil, fmt.Errorf("unknown snapshot format %q (available: %s)", format, strings.Join(Formats(), ", "))
	}

	comp, err := compression.Get(compressor)
	if err != nil {
		return nil, err
	}

	c := &Codec{format: format, handle: h, compressor: comp}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Format returns the wire format name.
func (c *Codec) Format() string {
	return c.format
}

// Compression returns the compressor name.
func (c *Codec) Compression() string {
	return c.compressor.Name()
}

// EncodeSnapshot encodes s.
func (c *Codec) EncodeSnapshot(s *tmtree.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot: %w", tmtree.ErrSerialization)
	}
	return c.encode(s)
}

// DecodeSnapshot decodes data produced by EncodeSnapshot. The result is not
// validated; hand it to Tree.Deserialize for that.
func (c *Codec) DecodeSnapshot(data []byte) (*tmtree.Snapshot, error) {
	var s tmtree.Snapshot
	if err := c.decode(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeProof encodes p.
func (c *Codec) EncodeProof(p *tmtree.Proof) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil proof: %w", tmtree.ErrSerialization)
	}
	return c.encode(p)
}

// DecodeProof decodes data produced by EncodeProof.
func (c *Codec) DecodeProof(data []byte) (*tmtree.Proof, error) {
	var p tmtree.Proof
	if err := c.decode(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadTree decodes a snapshot and restores it into a new tree built with opts.
func (c *Codec) LoadTree(data []byte, opts ...tmtree.Option) (*tmtree.Tree, error) {
	s, err := c.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	tree, err := tmtree.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := tree.Deserialize(s); err != nil {
		return nil, err
	}
	return tree, nil
}

func (c *Codec) encode(v interface{}) ([]byte, error) {
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, c.handle).Encode(v); err != nil {
		return nil, fmt.Errorf("%s encode: %v: %w", c.format, err, tmtree.ErrSerialization)
	}

	out, err := c.compressor.Compress(raw, c.level)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, tmtree.ErrSerialization)
	}
	return out, nil
}

func (c *Codec) decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("empty input: %w", tmtree.ErrSerialization)
	}

	raw, err := c.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, tmtree.ErrSerialization)
	}
	if err := codec.NewDecoderBytes(raw, c.handle).Decode(v); err != nil {
		return fmt.Errorf("%s decode: %v: %w", c.format, err, tmtree.ErrSerialization)
	}
	return nil
}
