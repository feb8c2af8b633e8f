package chain

import (
	"fmt"

	"rubin.dev/node/consensus"
)

// Network selects the well-known genesis header a Blockchain State is
// constructed against.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)

// ParseNetwork maps a config string onto a Network. "devnet" (this repo's
// Config default) is accepted as an alias for Regtest: both describe a
// locally-bootstrapped chain with a loose proof-of-work target.
func ParseNetwork(s string) (Network, error) {
	switch s {
	case string(Mainnet):
		return Mainnet, nil
	case string(Testnet):
		return Testnet, nil
	case string(Regtest), "devnet":
		return Regtest, nil
	case string(Signet):
		return Signet, nil
	default:
		return "", fmt.Errorf("chain: unknown network %q", s)
	}
}

// genesisHeaders holds one fixed, zero-transaction header per network.
// This protocol has no upstream Bitcoin genesis block to reproduce, so
// each entry is a loose-target header distinguished by timestamp and
// nonce; PrevBlockHash and MerkleRoot are both zero (no parent, no
// transactions).
var genesisHeaders = map[Network]consensus.BlockHeader{
	Mainnet: {
		Version:   1,
		Timestamp: 1_231_006_505,
		Target:    looseTarget(0x00),
		Nonce:     2_083_236_893,
	},
	Testnet: {
		Version:   1,
		Timestamp: 1_296_688_602,
		Target:    looseTarget(0x00),
		Nonce:     414_098_458,
	},
	Regtest: {
		Version:   1,
		Timestamp: 1_296_688_602,
		Target:    looseTarget(0x7f),
		Nonce:     2,
	},
	Signet: {
		Version:   1,
		Timestamp: 1_598_918_400,
		Target:    looseTarget(0x1e),
		Nonce:     52_613,
	},
}

// looseTarget builds a target with the given top byte and all-0xff below
// it, the same shape consensus.WorkFromTarget's powLimit sanity bound
// assumes.
func looseTarget(topByte byte) [32]byte {
	var t [32]byte
	for i := range t {
		t[i] = 0xff
	}
	t[0] = topByte
	return t
}

// GenesisHeader returns the well-known genesis header for network.
func GenesisHeader(network Network) (consensus.BlockHeader, error) {
	h, ok := genesisHeaders[network]
	if !ok {
		return consensus.BlockHeader{}, fmt.Errorf("chain: no genesis header for network %q", network)
	}
	return h, nil
}
