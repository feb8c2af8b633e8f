package consensus

// Block is the full wire-level block this protocol relays: a header plus
// its transactions. The header alone is enough to extend the chain; the
// transactions are what the block cache stores and what a merkle check
// validates against the header's MerkleRoot.
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
}

// Hash returns the block's identifying hash: the double-SHA256 of its
// header's canonical encoding. Two blocks with the same header (even with
// different transactions) share a hash, matching Bitcoin-family semantics.
func (b Block) Hash() [32]byte {
	return HeaderHash(b.Header)
}

// MerkleRoot computes the merkle root over the block's transaction ids.
// ok is false for a zero-transaction block, matching MerkleRootTxids.
func (b Block) MerkleRoot() (root [32]byte, ok bool) {
	if len(b.Transactions) == 0 {
		return root, false
	}
	txids := make([][32]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		txids[i] = tx.Txid()
	}
	return MerkleRootTxids(txids)
}

// SerializedSize returns the wire-serialized byte size of the block: the
// fixed-size header plus each transaction's canonical encoding. This is
// the size metric the block cache sums over its cached entries.
func (b Block) SerializedSize() int {
	return len(b.Bytes())
}

// Bytes serialises the block to its canonical wire form: the 116-byte
// header, a CompactSize transaction count, then each transaction in turn.
// This is the payload carried by a P2P "block" message.
func (b Block) Bytes() []byte {
	out := make([]byte, 0, BLOCK_HEADER_BYTES+9)
	out = append(out, BlockHeaderBytes(b.Header)...)
	out = AppendCompactSize(out, uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		out = append(out, tx.Bytes()...)
	}
	return out
}

// ParseBlockBytes deserialises a block from its canonical wire form (the
// inverse of Bytes), rejecting truncated or trailing-byte input.
func ParseBlockBytes(raw []byte) (Block, error) {
	if len(raw) < BLOCK_HEADER_BYTES {
		return Block{}, txerr(BLOCK_ERR_PARSE, "block: truncated header")
	}
	header, err := ParseBlockHeaderBytes(raw[:BLOCK_HEADER_BYTES])
	if err != nil {
		return Block{}, err
	}

	cur := newCursor(raw[BLOCK_HEADER_BYTES:])
	count, err := cur.readCompactSize()
	if err != nil {
		return Block{}, err
	}
	txs := make([]Transaction, 0, count)
	for i := uint64(0); i < count; i++ {
		tx, err := parseTransactionFromCursor(cur)
		if err != nil {
			return Block{}, err
		}
		txs = append(txs, tx)
	}
	if cur.remaining() != 0 {
		return Block{}, txerr(BLOCK_ERR_PARSE, "block: trailing bytes")
	}
	return Block{Header: header, Transactions: txs}, nil
}
