package tmtree

import (
	"fmt"

	"go.uber.org/zap"
)

// NodeRecord is the persisted form of a node.
type NodeRecord struct {
	ID       int    `json:"id" codec:"id"`
	Hash     []byte `json:"hash" codec:"hash"`
	Children []int  `json:"children" codec:"children"`
	IsLeaf   bool   `json:"is_leaf" codec:"is_leaf"`
	Parent   *int   `json:"parent,omitempty" codec:"parent,omitempty"`
}

// Snapshot is a lossless structural copy of a tree: every node, the
// leaf-data array, the root id and the logical leaf count.
type Snapshot struct {
	Nodes     []NodeRecord `json:"nodes" codec:"nodes"`
	LeafData  [][]byte     `json:"leaf_data" codec:"leaf_data"`
	RootID    *int         `json:"root_id,omitempty" codec:"root_id,omitempty"`
	LeafCount int          `json:"leaf_count" codec:"leaf_count"`
}

// Serialize returns a deep copy of the tree's structure.
func (t *Tree) Serialize() (*Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == noRoot {
		return nil, ErrUninitialized
	}

	s := &Snapshot{
		Nodes:     make([]NodeRecord, len(t.nodes)),
		LeafData:  make([][]byte, len(t.leafData)),
		LeafCount: t.leafCount,
	}
	for id := range t.nodes {
		n := &t.nodes[id]
		rec := NodeRecord{
			ID:       id,
			Hash:     append([]byte{}, n.Hash[:]...),
			Children: append([]int{}, n.Children...),
			IsLeaf:   n.IsLeaf,
		}
		if n.HasParent() {
			parent := n.Parent
			rec.Parent = &parent
		}
		s.Nodes[id] = rec
	}
	for i, d := range t.leafData {
		s.LeafData[i] = append([]byte{}, d...)
	}
	root := t.rootID
	s.RootID = &root

	return s, nil
}

// Deserialize replaces the tree's state with the snapshot's. Node ids are
// taken verbatim from the records. Stored hashes are trusted as given; call
// CheckInvariants to re-validate them. The previous state is kept if the
// snapshot is structurally unusable.
func (t *Tree) Deserialize(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot: %w", ErrSerialization)
	}

	n := len(s.Nodes)
	if len(s.LeafData) > n {
		return fmt.Errorf("%d leaf entries for %d nodes: %w", len(s.LeafData), n, ErrSerialization)
	}
	if s.LeafCount < 0 || s.LeafCount > len(s.LeafData) {
		return fmt.Errorf("leaf count %d with %d leaf entries: %w", s.LeafCount, len(s.LeafData), ErrSerialization)
	}

	rootID := noRoot
	if s.RootID != nil {
		if *s.RootID < 0 || *s.RootID >= n {
			return fmt.Errorf("root id %d out of range: %w", *s.RootID, ErrSerialization)
		}
		rootID = *s.RootID
	}

	nodes := make([]Node, n)
	seen := make([]bool, n)
	for i := range s.Nodes {
		rec := &s.Nodes[i]
		if rec.ID < 0 || rec.ID >= n || seen[rec.ID] {
			return fmt.Errorf("record %d has invalid or duplicate id %d: %w", i, rec.ID, ErrSerialization)
		}
		seen[rec.ID] = true

		if len(rec.Hash) != 32 {
			return fmt.Errorf("node %d hash is %d bytes: %w", rec.ID, len(rec.Hash), ErrSerialization)
		}
		if len(rec.Children) > BranchFactor {
			return fmt.Errorf("node %d has %d children: %w", rec.ID, len(rec.Children), ErrSerialization)
		}
		if rec.IsLeaf != (len(rec.Children) == 0) {
			return fmt.Errorf("node %d leaf flag disagrees with its children: %w", rec.ID, ErrSerialization)
		}
		for _, c := range rec.Children {
			if c < 0 || c >= n {
				return fmt.Errorf("node %d child %d out of range: %w", rec.ID, c, ErrSerialization)
			}
		}

		node := Node{IsLeaf: rec.IsLeaf, Parent: NoParent}
		copy(node.Hash[:], rec.Hash)
		if len(rec.Children) > 0 {
			node.Children = append([]int(nil), rec.Children...)
		}
		if rec.Parent != nil {
			if *rec.Parent < 0 || *rec.Parent >= n {
				return fmt.Errorf("node %d parent %d out of range: %w", rec.ID, *rec.Parent, ErrSerialization)
			}
			node.Parent = *rec.Parent
		}
		nodes[rec.ID] = node
	}

	for i := range s.LeafData {
		if !nodes[i].IsLeaf {
			return fmt.Errorf("leaf position %d holds an internal node: %w", i, ErrSerialization)
		}
	}

	leafData := make([][]byte, len(s.LeafData))
	for i, d := range s.LeafData {
		leafData[i] = append([]byte{}, d...)
	}

	t.mu.Lock()
	t.nodes = nodes
	t.leafData = leafData
	t.rootID = rootID
	t.leafCount = s.LeafCount
	t.proofs.purge()
	t.mu.Unlock()

	t.metrics.recordMemory(len(nodes), totalBytes(leafData))
	t.log.Debug("tree restored from snapshot", zap.Int("nodes", n), zap.Int("leaves", s.LeafCount))
	return nil
}
