package tmtree

import (
	"encoding/hex"
	"fmt"
)

// BranchFactor is the maximum number of children of an internal node.
const BranchFactor = 3

// NoParent marks a node without a parent (the root, or a node of an unbuilt layer).
const NoParent = -1

// Node is a tree node addressed by its position in the tree's node array.
// Children and Parent hold node ids; Parent is a back-reference used only for
// upward traversal.
type Node struct {
	Hash     [32]byte
	Children []int
	IsLeaf   bool
	Parent   int
}

// HasParent reports whether the node has a parent back-reference.
func (n *Node) HasParent() bool {
	return n.Parent != NoParent
}

// position returns the index of child among the node's children, or -1.
func (n *Node) position(child int) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) clone() Node {
	cp := *n
	if n.Children != nil {
		cp.Children = append([]int(nil), n.Children...)
	}
	return cp
}

// String returns a short description of the node for logs and diagnostics.
func (n *Node) String() string {
	kind := "inner"
	if n.IsLeaf {
		kind = "leaf"
	}
	return fmt.Sprintf("%s hash=%s children=%v parent=%d", kind, hex.EncodeToString(n.Hash[:]), n.Children, n.Parent)
}
