package tmtree

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// proofCache memoizes generated proofs by leaf index. It is purged on every
// mutation of the tree, and hands out deep copies so callers may modify the
// proofs they receive.
type proofCache struct {
	proofs *lru.Cache[int, *Proof]
}

func newProofCache(size int) (*proofCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[int, *Proof](size)
	if err != nil {
		return nil, err
	}
	return &proofCache{proofs: c}, nil
}

func (c *proofCache) get(leafIndex int) (*Proof, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.proofs.Get(leafIndex)
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (c *proofCache) put(p *Proof) {
	if c == nil {
		return
	}
	c.proofs.Add(p.LeafIndex, p.Clone())
}

func (c *proofCache) purge() {
	if c == nil {
		return
	}
	c.proofs.Purge()
}

func (c *proofCache) len() int {
	if c == nil {
		return 0
	}
	return c.proofs.Len()
}
