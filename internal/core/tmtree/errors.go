package tmtree

import "errors"

// Common errors
var (
	ErrEmptyInput     = errors.New("cannot build tree from empty input")
	ErrInvalidIndex   = errors.New("index out of range")
	ErrUninitialized  = errors.New("tree has not been built")
	ErrSerialization  = errors.New("snapshot serialization failed")
	ErrMissingParent  = errors.New("node has no parent while walking ancestry")
	ErrMalformedProof = errors.New("malformed proof")
	ErrInvariant      = errors.New("tree invariant violated")
)
