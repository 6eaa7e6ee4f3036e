package tmtree

import (
	"bytes"
	"fmt"
	"time"
)

// Sibling is a child digest paired with its position among its parent's children.
type Sibling struct {
	Position int      `json:"position" codec:"position"`
	Hash     [32]byte `json:"hash" codec:"hash"`
}

// ProofLevel describes one step of a proof: the position of the node being
// proven among its parent's children and the number of those children.
type ProofLevel struct {
	Position int `json:"position" codec:"position"`
	Width    int `json:"width" codec:"width"`
}

// Proof is a membership proof for one leaf. Siblings are flattened in
// leaf-to-root order; within a level they are in ascending position order and
// there are Width-1 of them.
type Proof struct {
	LeafIndex  int          `json:"leaf_index" codec:"leaf_index"`
	Levels     []ProofLevel `json:"levels" codec:"levels"`
	Siblings   []Sibling    `json:"siblings" codec:"siblings"`
	PathLength int          `json:"path_length" codec:"path_length"`
}

// Clone returns a deep copy of the proof.
func (p *Proof) Clone() *Proof {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Levels = append([]ProofLevel(nil), p.Levels...)
	cp.Siblings = append([]Sibling(nil), p.Siblings...)
	return &cp
}

// GenerateProof returns the sibling path from a logical leaf to the root.
func (t *Tree) GenerateProof(leafIndex int) (*Proof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.generateProofUnsafe(leafIndex)
}

// generateProofUnsafe builds a proof without locking (caller must hold a lock).
func (t *Tree) generateProofUnsafe(leafIndex int) (*Proof, error) {
	if err := t.checkLeafIndex(leafIndex); err != nil {
		return nil, err
	}
	if p, ok := t.proofs.get(leafIndex); ok {
		return p, nil
	}

	ancestors, err := t.ancestors(leafIndex)
	if err != nil {
		return nil, err
	}

	proof := &Proof{
		LeafIndex: leafIndex,
		Levels:    make([]ProofLevel, 0, len(ancestors)),
		Siblings:  make([]Sibling, 0, len(ancestors)*(BranchFactor-1)),
	}

	cur := leafIndex
	for _, parentID := range ancestors {
		parent := &t.nodes[parentID]
		pos := parent.position(cur)

		for i, c := range parent.Children {
			if i == pos {
				continue
			}
			if c < 0 || c >= len(t.nodes) {
				return nil, fmt.Errorf("child %d of node %d: %w", c, parentID, ErrInvalidIndex)
			}
			proof.Siblings = append(proof.Siblings, Sibling{Position: i, Hash: t.nodes[c].Hash})
		}
		proof.Levels = append(proof.Levels, ProofLevel{Position: pos, Width: len(parent.Children)})
		proof.PathLength++
		cur = parentID
	}

	t.proofs.put(proof)
	return proof, nil
}

// VerifyProof checks proof and leafData against the tree's current root.
func (t *Tree) VerifyProof(proof *Proof, leafData []byte) (bool, error) {
	start := time.Now()

	t.mu.RLock()
	if t.rootID == noRoot {
		t.mu.RUnlock()
		return false, ErrUninitialized
	}
	root := t.nodes[t.rootID].Hash
	t.mu.RUnlock()

	ok, err := VerifyProof(t.engine, root, proof, leafData)
	t.metrics.recordVerify(time.Since(start))
	return ok, err
}

// Verify reports whether data is the current content of the given leaf,
// by generating the leaf's proof and verifying it against the root.
func (t *Tree) Verify(leafIndex int, data []byte) (bool, error) {
	start := time.Now()

	t.mu.RLock()
	proof, err := t.generateProofUnsafe(leafIndex)
	if err != nil {
		t.mu.RUnlock()
		return false, err
	}
	root := t.nodes[t.rootID].Hash
	t.mu.RUnlock()

	ok, err := VerifyProof(t.engine, root, proof, data)
	t.metrics.recordVerify(time.Since(start))
	return ok, err
}

// VerifyProof checks a proof for leafData against a root obtained out of band.
//
// A content mismatch, or sibling entries that cannot be placed (position out
// of range, position taken twice, too few or too many siblings), yield
// (false, nil). A proof whose shape is unusable (nil proof, path length not
// matching its levels, level width outside 1..3, own position outside the
// level) yields (false, ErrMalformedProof).
func VerifyProof(engine *HashEngine, root [32]byte, proof *Proof, leafData []byte) (bool, error) {
	if engine == nil {
		engine = NewHashEngine(nil)
	}
	if proof == nil {
		return false, fmt.Errorf("nil proof: %w", ErrMalformedProof)
	}
	if proof.PathLength < 0 || proof.PathLength != len(proof.Levels) {
		return false, fmt.Errorf("path length %d with %d levels: %w", proof.PathLength, len(proof.Levels), ErrMalformedProof)
	}

	current := engine.LeafHash(leafData)
	next := 0

	for lvl := 0; lvl < proof.PathLength; lvl++ {
		level := proof.Levels[lvl]
		if level.Width < 1 || level.Width > BranchFactor {
			return false, fmt.Errorf("level %d width %d: %w", lvl, level.Width, ErrMalformedProof)
		}
		if level.Position < 0 || level.Position >= level.Width {
			return false, fmt.Errorf("level %d position %d of %d: %w", lvl, level.Position, level.Width, ErrMalformedProof)
		}

		need := level.Width - 1
		if next+need > len(proof.Siblings) {
			return false, nil
		}

		var children [BranchFactor][32]byte
		var filled [BranchFactor]bool
		children[level.Position] = current
		filled[level.Position] = true

		for _, s := range proof.Siblings[next : next+need] {
			if s.Position < 0 || s.Position >= level.Width || filled[s.Position] {
				return false, nil
			}
			children[s.Position] = s.Hash
			filled[s.Position] = true
		}
		next += need

		current = engine.Combine(children[:level.Width]...)
	}

	if next != len(proof.Siblings) {
		return false, nil
	}
	return bytes.Equal(current[:], root[:]), nil
}
