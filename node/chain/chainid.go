package chain

import (
	"golang.org/x/crypto/sha3"

	"rubin.dev/node/consensus"
)

// chainIDTag domain-separates the chain-id preimage from every other use
// of the genesis header bytes.
const chainIDTag = "RUBIN-GENESIS-v1"

// ChainID derives the 32-byte chain identifier peers exchange in the
// version handshake: SHA3-256 over the domain tag, the canonical genesis
// header encoding, and the genesis block's transaction count (zero — the
// genesis headers carry no transactions). Peers on different networks
// therefore fail the handshake's chain_id check before any headers flow.
func ChainID(network Network) ([32]byte, error) {
	genesis, err := GenesisHeader(network)
	if err != nil {
		return [32]byte{}, err
	}
	preimage := append([]byte(chainIDTag), consensus.BlockHeaderBytes(genesis)...)
	preimage = consensus.AppendCompactSize(preimage, 0)
	return sha3.Sum256(preimage), nil
}
