package tmtree

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Build discards any previous state and constructs the tree over blocks.
// Blocks are copied; the caller may reuse the input afterwards.
func (t *Tree) Build(blocks [][]byte) error {
	if len(blocks) == 0 {
		return ErrEmptyInput
	}

	start := time.Now()

	padded := len(blocks)
	if rem := padded % BranchFactor; rem != 0 {
		padded += BranchFactor - rem
	}

	nodes := make([]Node, 0, estimateNodeCount(padded))
	leafData := make([][]byte, 0, padded)

	var cache *LeafCache
	if t.cfg.CacheEnabled {
		cache = NewLeafCache(t.cfg.CacheSize)
	}

	for _, block := range blocks {
		data := append([]byte{}, block...)
		var h [32]byte
		if cache != nil {
			h = cache.LeafHash(t.engine, data)
		} else {
			h = t.engine.LeafHash(data)
		}
		nodes = append(nodes, Node{Hash: h, IsLeaf: true, Parent: NoParent})
		leafData = append(leafData, data)
	}

	// Padding leaves are structural only and excluded from leafCount.
	if padded > len(blocks) {
		empty := t.engine.LeafHash([]byte{})
		for len(nodes) < padded {
			nodes = append(nodes, Node{Hash: empty, IsLeaf: true, Parent: NoParent})
			leafData = append(leafData, []byte{})
		}
	}

	layer := make([]int, padded)
	for i := range layer {
		layer[i] = i
	}

	var err error
	for len(layer) > 1 {
		nodes, layer, err = t.reduceLayer(nodes, layer)
		if err != nil {
			return fmt.Errorf("failed to reduce layer: %w", err)
		}
	}

	t.mu.Lock()
	t.nodes = nodes
	t.leafData = leafData
	t.rootID = layer[0]
	t.leafCount = len(blocks)
	t.proofs.purge()
	t.mu.Unlock()

	elapsed := time.Since(start)
	t.metrics.recordBuild(elapsed, len(nodes), totalBytes(leafData))

	fields := []zap.Field{
		zap.Int("leaves", len(blocks)),
		zap.Int("padding", padded-len(blocks)),
		zap.Int("nodes", len(nodes)),
		zap.Duration("elapsed", elapsed),
	}
	if cache != nil {
		hits, misses, size := cache.Stats()
		fields = append(fields, zap.Uint64("cache_hits", hits), zap.Uint64("cache_misses", misses), zap.Int("cache_size", size))
	}
	t.log.Debug("tree built", fields...)

	return nil
}

// reduceLayer appends the parent layer of layer to nodes and returns the
// extended node array together with the ids of the new layer. Groups are
// consecutive runs of up to BranchFactor ids; the last group of a layer whose
// length is not a multiple of three is shorter, down to a single child.
func (t *Tree) reduceLayer(nodes []Node, layer []int) ([]Node, []int, error) {
	groups := (len(layer) + BranchFactor - 1) / BranchFactor
	hashes := make([][32]byte, groups)

	group := func(g int) []int {
		lo := g * BranchFactor
		hi := lo + BranchFactor
		if hi > len(layer) {
			hi = len(layer)
		}
		return layer[lo:hi]
	}

	combine := func(g int) {
		var buf [BranchFactor][32]byte
		children := buf[:0]
		for _, id := range group(g) {
			children = append(children, nodes[id].Hash)
		}
		hashes[g] = t.engine.Combine(children...)
	}

	if t.cfg.ParallelThreshold > 0 && len(layer) >= t.cfg.ParallelThreshold {
		// Fan out per-group combines; each task writes only its own slot and
		// the join below is the only synchronisation point.
		var eg errgroup.Group
		if t.cfg.ParallelWorkers > 0 {
			eg.SetLimit(t.cfg.ParallelWorkers)
		}
		const chunk = 256
		for lo := 0; lo < groups; lo += chunk {
			lo := lo
			hi := lo + chunk
			if hi > groups {
				hi = groups
			}
			eg.Go(func() error {
				for g := lo; g < hi; g++ {
					combine(g)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for g := 0; g < groups; g++ {
			combine(g)
		}
	}

	next := make([]int, groups)
	for g := 0; g < groups; g++ {
		id := len(nodes)
		children := append([]int(nil), group(g)...)
		for _, c := range children {
			nodes[c].Parent = id
		}
		nodes = append(nodes, Node{Hash: hashes[g], Children: children, Parent: NoParent})
		next[g] = id
	}

	return nodes, next, nil
}

// estimateNodeCount returns the exact number of nodes a leaf layer of the
// given padded length produces.
func estimateNodeCount(leaves int) int {
	total := leaves
	for n := leaves; n > 1; {
		n = (n + BranchFactor - 1) / BranchFactor
		total += n
	}
	return total
}

func totalBytes(data [][]byte) int {
	total := 0
	for _, d := range data {
		total += len(d)
	}
	return total
}
