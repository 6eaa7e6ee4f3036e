package tmtree

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// InvariantError represents an error found during invariant checking.
type InvariantError struct {
	NodeID      int
	Description string
	Err         error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invariant violation at node %d: %s: %v", e.NodeID, e.Description, e.Err)
	}
	return fmt.Sprintf("invariant violation at node %d: %s", e.NodeID, e.Description)
}

// Unwrap returns the underlying error.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// InvariantCheckResult contains the results of an invariant check.
type InvariantCheckResult struct {
	Errors            []*InvariantError
	NodesChecked      int
	LeavesChecked     int
	InnerNodesChecked int
}

// HasErrors returns true if any invariant violations were found.
func (r *InvariantCheckResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a summary of the invariant check results.
func (r *InvariantCheckResult) String() string {
	if r.HasErrors() {
		return fmt.Sprintf("InvariantCheck: FAILED - %d errors found (%d nodes checked: %d inner, %d leaves)",
			len(r.Errors), r.NodesChecked, r.InnerNodesChecked, r.LeavesChecked)
	}
	return fmt.Sprintf("InvariantCheck: PASSED (%d nodes checked: %d inner, %d leaves)",
		r.NodesChecked, r.InnerNodesChecked, r.LeavesChecked)
}

// Err returns nil when no violation was found, otherwise every violation
// joined and wrapped in ErrInvariant.
func (r *InvariantCheckResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return fmt.Errorf("%w: %w", ErrInvariant, errors.Join(errs...))
}

// CheckInvariants recomputes and cross-checks the whole structure:
//   - every leaf digest matches its stored content
//   - every internal digest equals the combination of its children in order
//   - every parent back-reference names a node that lists the child
//   - every non-root node is listed by exactly the parent it names
//   - the leaf layer length is a multiple of three and covers leafCount
//
// It is meant for trees restored from untrusted snapshots.
func (t *Tree) CheckInvariants() (*InvariantCheckResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == noRoot {
		return nil, ErrUninitialized
	}

	res := &InvariantCheckResult{}
	fail := func(id int, desc string, err error) {
		res.Errors = append(res.Errors, &InvariantError{NodeID: id, Description: desc, Err: err})
	}

	if len(t.leafData)%BranchFactor != 0 {
		fail(0, fmt.Sprintf("leaf layer length %d is not a multiple of %d", len(t.leafData), BranchFactor), nil)
	}
	if t.leafCount > len(t.leafData) {
		fail(0, fmt.Sprintf("leaf count %d exceeds leaf layer length %d", t.leafCount, len(t.leafData)), nil)
	}
	if t.nodes[t.rootID].HasParent() {
		fail(t.rootID, "root has a parent", nil)
	}

	claimedBy := make([]int, len(t.nodes))
	for i := range claimedBy {
		claimedBy[i] = NoParent
	}

	for id := range t.nodes {
		node := &t.nodes[id]
		res.NodesChecked++

		if node.IsLeaf {
			res.LeavesChecked++
			if id < len(t.leafData) {
				want := t.engine.LeafHash(t.leafData[id])
				if !bytes.Equal(want[:], node.Hash[:]) {
					fail(id, "leaf hash does not match content", nil)
				}
			} else {
				fail(id, "leaf outside the leaf layer", nil)
			}
		} else {
			res.InnerNodesChecked++
			hashes := make([][32]byte, 0, len(node.Children))
			valid := true
			for _, c := range node.Children {
				if c < 0 || c >= len(t.nodes) {
					fail(id, fmt.Sprintf("child %d", c), ErrInvalidIndex)
					valid = false
					continue
				}
				if claimedBy[c] != NoParent {
					fail(c, fmt.Sprintf("listed as child of both %d and %d", claimedBy[c], id), nil)
				}
				claimedBy[c] = id
				hashes = append(hashes, t.nodes[c].Hash)
			}
			if valid {
				want := t.engine.Combine(hashes...)
				if !bytes.Equal(want[:], node.Hash[:]) {
					fail(id, "hash does not match children", nil)
				}
			}
		}

		if node.HasParent() {
			p := node.Parent
			if p < 0 || p >= len(t.nodes) {
				fail(id, fmt.Sprintf("parent %d", p), ErrInvalidIndex)
			} else if t.nodes[p].position(id) < 0 {
				fail(id, fmt.Sprintf("parent %d does not list this node", p), ErrMissingParent)
			}
		} else if id != t.rootID {
			fail(id, "non-root node without parent", ErrMissingParent)
		}
	}

	if res.HasErrors() {
		t.log.Warn("invariant check failed", zap.Int("violations", len(res.Errors)), zap.Int("nodes", res.NodesChecked))
	}
	return res, nil
}
