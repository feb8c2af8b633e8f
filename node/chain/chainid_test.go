package chain

import "testing"

func TestChainIDDeterministic(t *testing.T) {
	a, err := ChainID(Regtest)
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	b, err := ChainID(Regtest)
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if a != b {
		t.Fatalf("chain id not deterministic: %x vs %x", a, b)
	}
	if a == ([32]byte{}) {
		t.Fatalf("chain id is all zeroes")
	}
}

func TestChainIDDistinctPerNetwork(t *testing.T) {
	networks := []Network{Mainnet, Testnet, Regtest, Signet}
	seen := make(map[[32]byte]Network)
	for _, n := range networks {
		id, err := ChainID(n)
		if err != nil {
			t.Fatalf("chain id %s: %v", n, err)
		}
		if prev, dup := seen[id]; dup {
			t.Fatalf("networks %s and %s share chain id %x", prev, n, id)
		}
		seen[id] = n
	}
}

func TestChainIDUnknownNetwork(t *testing.T) {
	if _, err := ChainID(Network("nope")); err == nil {
		t.Fatalf("expected error for unknown network")
	}
}
