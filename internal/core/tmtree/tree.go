// Package tmtree implements an authenticated ternary Merkle tree over an
// ordered sequence of opaque blocks.
//
// Nodes live in a single append-only array and are addressed by their index.
// Leaves occupy the first ids in input order, followed by padding leaves that
// make the leaf layer a multiple of three, followed by each internal layer
// bottom-up. A node's children are owned index lists; its parent is a plain
// back-reference used only to walk upward.
package tmtree

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const noRoot = -1

// Tree is a ternary Merkle tree. All methods are safe for concurrent use:
// mutations take the write lock, reads take the read lock.
type Tree struct {
	mu        sync.RWMutex
	nodes     []Node
	leafData  [][]byte
	rootID    int
	leafCount int

	cfg     Config
	engine  *HashEngine
	metrics *Metrics
	proofs  *proofCache
	log     *zap.Logger
}

// New creates an empty tree. Build or Deserialize must be called before
// any read operation.
func New(opts ...Option) (*Tree, error) {
	t := &Tree{
		rootID: noRoot,
		cfg:    DefaultConfig(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.engine = NewHashEngine(t.cfg.Hasher)
	t.metrics = newMetrics(t.cfg.MetricsEnabled)

	proofs, err := newProofCache(t.cfg.ProofCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof cache: %w", err)
	}
	t.proofs = proofs

	return t, nil
}

// Engine returns the hash engine used by the tree.
func (t *Tree) Engine() *HashEngine {
	return t.engine
}

// Config returns the tree configuration.
func (t *Tree) Config() Config {
	return t.cfg
}

// Metrics returns the collected metrics. All values are zero when metrics are disabled.
func (t *Tree) Metrics() MetricsSnapshot {
	return t.metrics.Snapshot()
}

// IsBuilt reports whether the tree holds a root.
func (t *Tree) IsBuilt() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootID != noRoot
}

// RootHash returns the root digest.
func (t *Tree) RootHash() ([32]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == noRoot {
		return [32]byte{}, ErrUninitialized
	}
	return t.nodes[t.rootID].Hash, nil
}

// RootID returns the id of the root node.
func (t *Tree) RootID() (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == noRoot {
		return 0, ErrUninitialized
	}
	return t.rootID, nil
}

// LeafCount returns the number of logical leaves, excluding padding.
func (t *Tree) LeafCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.leafCount
}

// PaddedLeafCount returns the length of the leaf layer including padding.
func (t *Tree) PaddedLeafCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.leafData)
}

// NodeCount returns the total number of nodes.
func (t *Tree) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Height returns the number of layers from the leaves to the root inclusive,
// or 0 for an unbuilt tree.
func (t *Tree) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == noRoot || len(t.nodes) == 0 {
		return 0
	}

	// Walk up from the first leaf; bounded so a corrupt parent chain cannot loop.
	height := 1
	id := 0
	for steps := 0; steps < len(t.nodes); steps++ {
		if id == t.rootID {
			return height
		}
		parent := t.nodes[id].Parent
		if parent < 0 || parent >= len(t.nodes) {
			break
		}
		id = parent
		height++
	}
	return height
}

// LeafData returns a copy of the stored content of a logical leaf.
func (t *Tree) LeafData(leafIndex int) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkLeafIndex(leafIndex); err != nil {
		return nil, err
	}
	return append([]byte{}, t.leafData[leafIndex]...), nil
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id int) (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if id < 0 || id >= len(t.nodes) {
		return Node{}, fmt.Errorf("node %d: %w", id, ErrInvalidIndex)
	}
	return t.nodes[id].clone(), nil
}

// checkLeafIndex validates a logical leaf index. Caller must hold a lock.
func (t *Tree) checkLeafIndex(leafIndex int) error {
	if t.rootID == noRoot {
		return ErrUninitialized
	}
	if leafIndex < 0 || leafIndex >= t.leafCount {
		return fmt.Errorf("leaf %d not in [0, %d): %w", leafIndex, t.leafCount, ErrInvalidIndex)
	}
	return nil
}

// recompute sets a node's hash from its current children. Caller must hold the write lock.
func (t *Tree) recompute(id int) error {
	if id < 0 || id >= len(t.nodes) {
		return fmt.Errorf("recompute node %d: %w", id, ErrInvalidIndex)
	}
	node := &t.nodes[id]
	if node.IsLeaf {
		return nil
	}

	var hashes [BranchFactor][32]byte
	children := hashes[:0]
	for _, c := range node.Children {
		if c < 0 || c >= len(t.nodes) {
			return fmt.Errorf("child %d of node %d: %w", c, id, ErrInvalidIndex)
		}
		children = append(children, t.nodes[c].Hash)
	}
	node.Hash = t.engine.Combine(children...)
	return nil
}
