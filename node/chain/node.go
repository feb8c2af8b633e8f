package chain

import (
	"math/big"
	"sync"

	"rubin.dev/node/consensus"
)

// HeaderNode is a value in the header tree. Header, Height, and Work are
// immutable once constructed and need no synchronization; Children is
// append-only and guarded by mu so a reader walking it never races a
// concurrent insert linking a new child under the same parent.
type HeaderNode struct {
	Header consensus.BlockHeader
	Height uint64
	Work   *big.Int
	hash   [32]byte

	mu       sync.Mutex
	children []*HeaderNode
}

func newHeaderNode(header consensus.BlockHeader, height uint64, work *big.Int) *HeaderNode {
	return &HeaderNode{
		Header: header,
		Height: height,
		Work:   work,
		hash:   consensus.HeaderHash(header),
	}
}

// Hash returns the node's block hash, computed once at construction since
// Header is immutable.
func (n *HeaderNode) Hash() [32]byte {
	return n.hash
}

// Children returns a snapshot of the node's children. The returned slice
// is safe to range over even if a concurrent addChild appends another
// entry after the snapshot is taken.
func (n *HeaderNode) Children() []*HeaderNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*HeaderNode, len(n.children))
	copy(out, n.children)
	return out
}

// IsTip reports whether the node currently has no children.
func (n *HeaderNode) IsTip() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children) == 0
}

func (n *HeaderNode) addChild(child *HeaderNode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, child)
}
