package chain

import (
	"math/big"

	"rubin.dev/node/consensus"
)

// Tip is a projection of a leaf header node. The tip sequence mirrors the
// set of header nodes with no children, sorted by descending work (stable,
// first-seen wins on ties).
type Tip struct {
	Header consensus.BlockHeader
	Height uint64
	Work   *big.Int
	Hash   [32]byte
}

func tipFromNode(n *HeaderNode) Tip {
	return Tip{
		Header: n.Header,
		Height: n.Height,
		Work:   n.Work,
		Hash:   n.Hash(),
	}
}
