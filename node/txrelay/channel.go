package txrelay

import (
	"rubin.dev/node/consensus"
	"rubin.dev/node/node/p2p"
)

// PeerAddr identifies a connected peer. It mirrors the socket address a
// real Channel implementation would track; kept as a plain string here so
// this package stays decoupled from any particular transport.
type PeerAddr string

// Inventory is the only inventory variant this relay produces or
// consumes: a pending transaction identified by its txid.
type Inventory struct {
	Txid [32]byte
}

// NetworkMessage is one of the three Bitcoin-family messages this core
// speaks. Command reuses node/p2p's command-string constants (CmdInv,
// CmdGetData, CmdTx) so a real Channel built on node/p2p's envelope codec
// consumes these values directly, without translation.
type NetworkMessage struct {
	Command string
	Inv     []Inventory
	Tx      *consensus.Transaction
}

// Re-exported for callers constructing NetworkMessage literals without an
// extra node/p2p import.
const (
	CmdInv     = p2p.CmdInv
	CmdGetData = p2p.CmdGetData
	CmdTx      = p2p.CmdTx
)

// Command is an outbound instruction to the Channel: Address nil means
// broadcast to every currently available peer; non-nil means unicast.
type Command struct {
	Address *PeerAddr
	Message NetworkMessage
}

// Channel is the capability the Transaction Manager uses to learn about
// connected peers and to emit outbound messages. Send failures are
// reported but never fatal to the caller; the manager ignores them and
// relies on the next tick.
type Channel interface {
	AvailableConnections() []PeerAddr
	Send(cmd Command) error
}
