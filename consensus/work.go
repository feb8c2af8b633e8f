package consensus

import "math/big"

// powLimit is the loosest permitted difficulty target (regtest-style, every
// bit set except the most significant one): the ceiling WorkFromTarget
// validates targets against.
// Real network selection narrows this via the header-validation collaborator;
// the header store only needs a sanity bound to reject zero/garbage targets.
var powLimit = func() *big.Int {
	var max [32]byte
	for i := range max {
		max[i] = 0xff
	}
	max[0] = 0x7f
	return new(big.Int).SetBytes(max[:])
}()

// WorkFromTarget computes a single header's proof-of-work contribution:
//
//	work = floor(2^256 / target)
//
// Arithmetic is exact arbitrary-precision integer division; never floats.
func WorkFromTarget(target [32]byte) (*big.Int, error) {
	t := new(big.Int).SetBytes(target[:])
	if t.Sign() <= 0 {
		return nil, txerr(BLOCK_ERR_POW_INVALID, "work_from_target: target is zero")
	}
	if t.Cmp(powLimit) > 0 {
		return nil, txerr(BLOCK_ERR_POW_INVALID, "work_from_target: target above pow limit")
	}
	two256 := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Div(two256, t), nil
}
