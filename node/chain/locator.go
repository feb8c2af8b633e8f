package chain

import "math"

// LocatorHashes produces the block-locator list a peer expects in
// getheaders/getblocks negotiation: recent history densely, ancient
// history exponentially sparser, genesis always last.
func (s *BlockchainState) LocatorHashes() [][32]byte {
	tip := s.GetActiveChainTip()
	current, _ := s.store.Get(tip.Hash)
	genesisHash := s.GetInitialHash()

	result := make([][32]byte, 0, 24)
	lastHash := current.Hash()
	step := uint64(1)

	for i := 0; i < 22; i++ {
		h := current.Hash()
		result = append(result, h)
		lastHash = h

		next := current
		failed := false
		for j := uint64(0); j < step; j++ {
			parent, ok := s.store.Get(next.Header.PrevBlockHash)
			if !ok {
				failed = true
				break
			}
			next = parent
		}
		if failed {
			if lastHash != genesisHash {
				result = append(result, genesisHash)
			}
			return result
		}
		current = next

		if i >= 7 {
			if step <= math.MaxUint64/2 {
				step *= 2
			} else {
				step = math.MaxUint64
			}
		}
	}

	if lastHash != genesisHash {
		result = append(result, genesisHash)
	}
	return result
}
