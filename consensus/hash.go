package consensus

import "crypto/sha256"

// doubleSHA256 is Bitcoin's standard block/transaction hashing primitive:
// SHA256 applied twice.
func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
