package chain

import (
	"fmt"
	"time"

	"rubin.dev/node/consensus"
)

// HeaderStoreView is the narrow read-only capability the header-validation
// collaborator needs to walk ancestors.
type HeaderStoreView interface {
	// GetHeader returns the header and height stored under hash.
	GetHeader(hash [32]byte) (consensus.BlockHeader, uint64, bool)
	// GetHeight returns the active chain tip's height.
	GetHeight() uint64
	// GetInitialHash returns the genesis block hash.
	GetInitialHash() [32]byte
}

// HeaderValidator is the collaborator BlockchainState.addHeader delegates
// to before inserting a header. Difficulty retargeting and other
// network-specific consensus rules live behind this interface, not in
// this package.
type HeaderValidator interface {
	ValidateHeader(network Network, store HeaderStoreView, header consensus.BlockHeader) error
}

// maxFutureDrift bounds how far into the future (relative to the
// validator's clock) a header's timestamp may be, the same kind of sanity
// bound Bitcoin-family nodes apply before full retargeting logic runs.
const maxFutureDrift = 2 * time.Hour

// DefaultValidator is a minimal stand-in header validator: it checks that
// the header's proof-of-work target is within the sanity bound
// consensus.WorkFromTarget enforces and that the timestamp is not
// implausibly far in the future. It does not implement difficulty
// retargeting against ancestor headers; retargeting is network policy
// owned by the embedding node. Callers needing real consensus rules
// supply their own HeaderValidator.
type DefaultValidator struct {
	// Now returns the current time; defaults to time.Now if nil.
	Now func() time.Time
}

func (v *DefaultValidator) ValidateHeader(_ Network, _ HeaderStoreView, header consensus.BlockHeader) error {
	if _, err := consensus.WorkFromTarget(header.Target); err != nil {
		return fmt.Errorf("chain: validator: %w", err)
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	maxTs := uint64(now().Add(maxFutureDrift).Unix())
	if header.Timestamp > maxTs {
		return fmt.Errorf("chain: validator: timestamp too far in the future")
	}
	return nil
}
