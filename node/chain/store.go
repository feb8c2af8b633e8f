package chain

import (
	"math/big"
	"sync"

	"rubin.dev/node/consensus"
)

// HeaderStore is the in-memory tree of validated block headers: a map
// keyed by block hash, parent links realized as
// append-only children lists on each node. The store's own map is
// protected by a lock distinct from any per-node children lock, so a
// lookup never blocks on a concurrent child-link under a different node.
type HeaderStore struct {
	mu    sync.RWMutex
	nodes map[[32]byte]*HeaderNode
}

// NewHeaderStore seeds the store with genesis at height 0, work equal to
// its own header work, and no children — making it the sole tip.
func NewHeaderStore(genesis consensus.BlockHeader) (*HeaderStore, error) {
	work, err := consensus.WorkFromTarget(genesis.Target)
	if err != nil {
		return nil, err
	}
	node := newHeaderNode(genesis, 0, work)
	return &HeaderStore{
		nodes: map[[32]byte]*HeaderNode{node.Hash(): node},
	}, nil
}

// Get returns the node for hash, if present.
func (s *HeaderStore) Get(hash [32]byte) (*HeaderNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[hash]
	return n, ok
}

// Contains reports whether hash is present in the store.
func (s *HeaderStore) Contains(hash [32]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[hash]
	return ok
}

// Insert allocates a new node for header and links it under its parent.
// Returns the existing node with existed=true if header's hash
// is already present. Returns a *PrevHeaderNotCachedError if header's
// parent is not in the store.
func (s *HeaderStore) Insert(header consensus.BlockHeader) (node *HeaderNode, existed bool, err error) {
	hash := consensus.HeaderHash(header)

	s.mu.Lock()
	if existing, ok := s.nodes[hash]; ok {
		s.mu.Unlock()
		return existing, true, nil
	}

	parent, ok := s.nodes[header.PrevBlockHash]
	if !ok {
		s.mu.Unlock()
		return nil, false, &PrevHeaderNotCachedError{PrevHash: header.PrevBlockHash}
	}

	headerWork, err := consensus.WorkFromTarget(header.Target)
	if err != nil {
		s.mu.Unlock()
		return nil, false, err
	}
	work := new(big.Int).Add(parent.Work, headerWork)
	newNode := newHeaderNode(header, parent.Height+1, work)
	s.nodes[hash] = newNode
	s.mu.Unlock()

	parent.addChild(newNode)
	return newNode, false, nil
}
