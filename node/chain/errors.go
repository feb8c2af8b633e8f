package chain

import "fmt"

// InvalidHeaderError reports that the header-validation collaborator
// rejected a header. Cause carries the collaborator's own error.
type InvalidHeaderError struct {
	BlockHash [32]byte
	Cause     error
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("chain: invalid header %x: %v", e.BlockHash, e.Cause)
}

func (e *InvalidHeaderError) Unwrap() error { return e.Cause }

// PrevHeaderNotCachedError reports a header whose parent is not (yet) in
// the Header Store. Callers violating the "topologically ordered" batch
// precondition see this on the offending header; headers before it remain
// in the store.
type PrevHeaderNotCachedError struct {
	PrevHash [32]byte
}

func (e *PrevHeaderNotCachedError) Error() string {
	return fmt.Sprintf("chain: prev header not cached: %x", e.PrevHash)
}

// InvalidMerkleRootError reports a block whose computed merkle root
// disagrees with its header's MerkleRoot field. Blocks with no
// transactions never produce this error (see consensus.Block.MerkleRoot).
type InvalidMerkleRootError struct {
	BlockHash [32]byte
}

func (e *InvalidMerkleRootError) Error() string {
	return fmt.Sprintf("chain: invalid merkle root: block %x", e.BlockHash)
}

// AddBlockHeaderError wraps an error returned while extending the header
// tree on behalf of AddBlock, so callers can distinguish "the block's
// merkle root is wrong" from "the block's header itself was rejected".
type AddBlockHeaderError struct {
	Cause error
}

func (e *AddBlockHeaderError) Error() string {
	return fmt.Sprintf("chain: add block: header: %v", e.Cause)
}

func (e *AddBlockHeaderError) Unwrap() error { return e.Cause }
