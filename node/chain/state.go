package chain

import (
	"sort"
	"sync"

	"rubin.dev/node/consensus"
)

// BlockchainState owns one Header Store, a block cache, and the live tip
// sequence. It is a single-owner synchronous object: all mutating methods
// take an internal lock, so callers do not need to wrap it in their own
// mutex.
type BlockchainState struct {
	network   Network
	validator HeaderValidator
	metrics   *Metrics

	mu     sync.Mutex
	store  *HeaderStore
	tips   []Tip
	blocks map[[32]byte]consensus.Block
}

// NewBlockchainState seeds a fresh engine for network, using validator to
// check incoming headers and metrics (which may be nil) to publish its
// gauges/counter.
func NewBlockchainState(network Network, validator HeaderValidator, metrics *Metrics) (*BlockchainState, error) {
	genesis, err := GenesisHeader(network)
	if err != nil {
		return nil, err
	}
	store, err := NewHeaderStore(genesis)
	if err != nil {
		return nil, err
	}
	genesisNode, _ := store.Get(consensus.HeaderHash(genesis))
	s := &BlockchainState{
		network:   network,
		validator: validator,
		metrics:   metrics,
		store:     store,
		tips:      []Tip{tipFromNode(genesisNode)},
		blocks:    make(map[[32]byte]consensus.Block),
	}
	metrics.setTips(1)
	metrics.setTipHeight(0)
	return s, nil
}

// Genesis returns the network's genesis node.
func (s *BlockchainState) Genesis() *HeaderNode {
	n, _ := s.store.Get(s.GetInitialHash())
	return n
}

// GetCachedHeader forwards to the Header Store.
func (s *BlockchainState) GetCachedHeader(hash [32]byte) (*HeaderNode, bool) {
	return s.store.Get(hash)
}

// IsBlockHashKnown reports header-store membership. The name suggests
// "block" but the semantics are "header known"; preserved for ABI
// compatibility.
func (s *BlockchainState) IsBlockHashKnown(hash [32]byte) bool {
	return s.store.Contains(hash)
}

// AddHeaders iterates headers in order, attempting AddHeader for each.
// It stops at the first error, returning both the nodes added so far and
// that error. Tips are re-sorted and metrics republished once, after the
// loop, regardless of whether an error occurred.
func (s *BlockchainState) AddHeaders(headers []consensus.BlockHeader) ([]*HeaderNode, error) {
	added := make([]*HeaderNode, 0, len(headers))
	var firstErr error
	for _, h := range headers {
		node, existed, err := s.addHeader(h)
		if err != nil {
			firstErr = err
			break
		}
		if !existed {
			added = append(added, node)
		}
	}
	s.mu.Lock()
	s.resortTipsLocked()
	tips := len(s.tips)
	tipHeight := s.tips[0].Height
	s.mu.Unlock()
	s.metrics.setTips(tips)
	s.metrics.setTipHeight(tipHeight)
	return added, firstErr
}

// addHeader runs the single-header insert pipeline: existence check, then
// validator delegation, then store insertion and tip bookkeeping.
// existed=true means the header was already present (informational, not
// an error).
func (s *BlockchainState) addHeader(header consensus.BlockHeader) (node *HeaderNode, existed bool, err error) {
	hash := consensus.HeaderHash(header)
	if existing, ok := s.store.Get(hash); ok {
		return existing, true, nil
	}

	if s.validator != nil {
		if verr := s.validator.ValidateHeader(s.network, s, header); verr != nil {
			return nil, false, &InvalidHeaderError{BlockHash: hash, Cause: verr}
		}
	}

	newNode, existedNow, insErr := s.store.Insert(header)
	if insErr != nil {
		return nil, false, insErr
	}
	if existedNow {
		return newNode, true, nil
	}

	s.mu.Lock()
	replaced := false
	for i, t := range s.tips {
		if t.Hash == header.PrevBlockHash {
			s.tips[i] = tipFromNode(newNode)
			replaced = true
			break
		}
	}
	if !replaced {
		s.tips = append(s.tips, tipFromNode(newNode))
	}
	s.mu.Unlock()

	s.metrics.incHeaderCacheSize()
	return newNode, false, nil
}

// AddBlock validates the block's merkle root, extends the header tree,
// caches the block, and returns the new block's height.
func (s *BlockchainState) AddBlock(block consensus.Block) (uint64, error) {
	hash := block.Hash()
	if computed, ok := block.MerkleRoot(); ok && computed != block.Header.MerkleRoot {
		return 0, &InvalidMerkleRootError{BlockHash: hash}
	}

	node, _, err := s.addHeader(block.Header)
	if err != nil {
		return 0, &AddBlockHeaderError{Cause: err}
	}

	s.mu.Lock()
	s.resortTipsLocked()
	tips := len(s.tips)
	tipHeight := s.tips[0].Height
	s.blocks[hash] = block
	blockCacheSize := s.blockCacheSizeLocked()
	s.mu.Unlock()

	s.metrics.setTips(tips)
	s.metrics.setTipHeight(tipHeight)
	s.metrics.setBlockCacheSize(blockCacheSize)
	return node.Height, nil
}

// GetActiveChainTip returns the tip with the greatest cumulative work.
// Always defined because genesis is inserted at construction.
func (s *BlockchainState) GetActiveChainTip() Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tips[0]
}

// Tips returns a snapshot of the current tip sequence, sorted by
// descending work.
func (s *BlockchainState) Tips() []Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tip, len(s.tips))
	copy(out, s.tips)
	return out
}

// resortTipsLocked re-sorts s.tips by descending work with a stable sort,
// so equal-work tips keep the order of first observation. Caller must
// hold s.mu.
func (s *BlockchainState) resortTipsLocked() {
	sort.SliceStable(s.tips, func(i, j int) bool {
		return s.tips[i].Work.Cmp(s.tips[j].Work) > 0
	})
}

// PruneBlocks removes each listed hash from the block cache; absent
// entries are ignored.
func (s *BlockchainState) PruneBlocks(hashes [][32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hashes {
		delete(s.blocks, h)
	}
	s.metrics.setBlockCacheSize(s.blockCacheSizeLocked())
}

// PruneBlocksBelowHeight deletes every cached block whose header's height
// is strictly less than h. A block whose header is not in the store (should
// not happen, since AddBlock always inserts the header first) is treated
// as height 0.
func (s *BlockchainState) PruneBlocksBelowHeight(h uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, block := range s.blocks {
		height := uint64(0)
		if n, ok := s.store.Get(consensus.HeaderHash(block.Header)); ok {
			height = n.Height
		}
		if height < h {
			delete(s.blocks, hash)
		}
	}
	s.metrics.setBlockCacheSize(s.blockCacheSizeLocked())
}

// ClearBlocks empties the block cache.
func (s *BlockchainState) ClearBlocks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = make(map[[32]byte]consensus.Block)
	s.metrics.setBlockCacheSize(0)
}

// GetBlockCacheSize returns the sum of wire-serialized sizes of all
// cached blocks.
func (s *BlockchainState) GetBlockCacheSize() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockCacheSizeLocked()
}

func (s *BlockchainState) blockCacheSizeLocked() uint64 {
	var total uint64
	for _, b := range s.blocks {
		total += uint64(b.SerializedSize())
	}
	return total
}

// GetHeader implements HeaderStoreView for the validator collaborator.
func (s *BlockchainState) GetHeader(hash [32]byte) (consensus.BlockHeader, uint64, bool) {
	n, ok := s.store.Get(hash)
	if !ok {
		return consensus.BlockHeader{}, 0, false
	}
	return n.Header, n.Height, true
}

// GetHeight implements HeaderStoreView: the active tip's height.
func (s *BlockchainState) GetHeight() uint64 {
	return s.GetActiveChainTip().Height
}

// GetInitialHash implements HeaderStoreView: the genesis block hash.
func (s *BlockchainState) GetInitialHash() [32]byte {
	genesis, err := GenesisHeader(s.network)
	if err != nil {
		return [32]byte{}
	}
	return consensus.HeaderHash(genesis)
}
