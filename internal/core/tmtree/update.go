package tmtree

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Update replaces the content of one logical leaf and recomputes the hashes
// of its ancestors, from the immediate parent up to the root.
// Nothing is mutated when an error is returned.
func (t *Tree) Update(leafIndex int, data []byte) error {
	start := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkLeafIndex(leafIndex); err != nil {
		return err
	}

	ancestors, err := t.ancestors(leafIndex)
	if err != nil {
		t.log.Error("ancestry walk failed", zap.Int("leaf", leafIndex), zap.Error(err))
		return err
	}

	delta := t.setLeaf(leafIndex, data)
	for _, id := range ancestors {
		if err := t.recompute(id); err != nil {
			return fmt.Errorf("failed to recompute ancestor: %w", err)
		}
	}
	t.proofs.purge()

	t.metrics.adjustMemory(delta)
	t.metrics.recordUpdate(time.Since(start), 1)
	return nil
}

// BatchUpdate replaces the content of several leaves at once. All indices are
// validated before any leaf is touched. Each affected internal node is
// recomputed exactly once, breadth-first from the updated leaves' parents
// upward, so the result does not depend on the iteration order of updates.
func (t *Tree) BatchUpdate(updates map[int][]byte) error {
	start := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rootID == noRoot {
		return ErrUninitialized
	}

	indices := make([]int, 0, len(updates))
	for idx := range updates {
		if err := t.checkLeafIndex(idx); err != nil {
			return err
		}
		indices = append(indices, idx)
	}
	if len(indices) == 0 {
		return nil
	}
	sort.Ints(indices)

	for _, idx := range indices {
		if _, err := t.ancestors(idx); err != nil {
			t.log.Error("ancestry walk failed", zap.Int("leaf", idx), zap.Error(err))
			return err
		}
	}

	delta := 0
	for _, idx := range indices {
		delta += t.setLeaf(idx, updates[idx])
	}

	queue := make([]int, 0, len(indices))
	enqueued := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		parent := t.nodes[idx].Parent
		if parent == NoParent {
			continue
		}
		if _, ok := enqueued[parent]; !ok {
			enqueued[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	recomputed := 0
	done := make(map[int]struct{}, len(queue))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, ok := done[id]; ok {
			continue
		}
		if err := t.recompute(id); err != nil {
			return fmt.Errorf("failed to recompute node: %w", err)
		}
		done[id] = struct{}{}
		recomputed++

		parent := t.nodes[id].Parent
		if parent == NoParent {
			continue
		}
		if _, ok := enqueued[parent]; !ok {
			enqueued[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}
	t.proofs.purge()

	t.metrics.adjustMemory(delta)
	t.metrics.recordUpdate(time.Since(start), len(indices))
	t.log.Debug("batch update applied", zap.Int("leaves", len(indices)), zap.Int("recomputed", recomputed))
	return nil
}

// setLeaf stores a copy of data as the leaf's content and refreshes its digest.
// It returns the change in stored bytes. Caller must hold the write lock.
func (t *Tree) setLeaf(leafIndex int, data []byte) int {
	cp := append([]byte{}, data...)
	delta := len(cp) - len(t.leafData[leafIndex])
	t.leafData[leafIndex] = cp
	t.nodes[leafIndex].Hash = t.engine.LeafHash(cp)
	return delta
}

// ancestors returns the ids of every ancestor of node id, ordered from the
// immediate parent up to the root. Caller must hold a lock.
func (t *Tree) ancestors(id int) ([]int, error) {
	if id < 0 || id >= len(t.nodes) {
		return nil, fmt.Errorf("node %d: %w", id, ErrInvalidIndex)
	}

	path := make([]int, 0, 16)
	cur := id
	for cur != t.rootID {
		if len(path) >= len(t.nodes) {
			return nil, fmt.Errorf("parent chain of node %d does not reach the root: %w", id, ErrMissingParent)
		}
		parent := t.nodes[cur].Parent
		if parent == NoParent {
			return nil, fmt.Errorf("node %d: %w", cur, ErrMissingParent)
		}
		if parent < 0 || parent >= len(t.nodes) {
			return nil, fmt.Errorf("parent %d of node %d: %w", parent, cur, ErrInvalidIndex)
		}
		if t.nodes[parent].position(cur) < 0 {
			return nil, fmt.Errorf("node %d is not a child of its parent %d: %w", cur, parent, ErrMissingParent)
		}
		path = append(path, parent)
		cur = parent
	}
	return path, nil
}
