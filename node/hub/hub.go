// Package hub adapts node/p2p's wire-level peer transport (handshake,
// ping/pong, ban-score, envelope framing) to the two narrow collaborator
// interfaces the blockchain state engine and transaction relay manager
// actually depend on: chain's header/block ingestion and txrelay.Channel.
// Everything in node/p2p stays a generic Bitcoin-family wire codec; Hub is
// the glue that lets a real TCP peer drive rubin.dev/node/node/chain and
// rubin.dev/node/node/txrelay without either core importing net or p2p
// directly.
package hub

import (
	"fmt"
	"sync"

	"rubin.dev/node/consensus"
	"rubin.dev/node/node/chain"
	"rubin.dev/node/node/p2p"
	"rubin.dev/node/node/txrelay"
)

// Hub tracks the set of currently connected peers and routes inbound wire
// messages to a BlockchainState and a TransactionManager. It implements
// txrelay.Channel directly, so a TransactionManager can Tick against it.
type Hub struct {
	state *chain.BlockchainState
	tx    *txrelay.TransactionManager

	mu    sync.RWMutex
	peers map[txrelay.PeerAddr]*p2p.Peer
}

// New returns a Hub wiring state and tx to real peer connections registered
// via Register.
func New(state *chain.BlockchainState, tx *txrelay.TransactionManager) *Hub {
	return &Hub{
		state: state,
		tx:    tx,
		peers: make(map[txrelay.PeerAddr]*p2p.Peer),
	}
}

// Register tracks p under addr so AvailableConnections/Send can reach it.
// Callers typically register a peer right after a successful handshake and
// Forget it once Peer.Run returns.
func (h *Hub) Register(addr txrelay.PeerAddr, p *p2p.Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[addr] = p
}

// Forget removes addr from the connected-peer set.
func (h *Hub) Forget(addr txrelay.PeerAddr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, addr)
}

// AvailableConnections implements txrelay.Channel: a snapshot of currently
// registered peer addresses.
func (h *Hub) AvailableConnections() []txrelay.PeerAddr {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]txrelay.PeerAddr, 0, len(h.peers))
	for addr := range h.peers {
		out = append(out, addr)
	}
	return out
}

// Send implements txrelay.Channel: encodes cmd.Message onto the wire and
// hands it to the addressed peer, or to every currently registered peer
// when cmd.Address is nil (broadcast).
func (h *Hub) Send(cmd txrelay.Command) error {
	payload, wireCmd, err := encodeOutbound(cmd.Message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if cmd.Address != nil {
		p, ok := h.peers[*cmd.Address]
		if !ok {
			return fmt.Errorf("hub: unknown peer %s", *cmd.Address)
		}
		return p.Send(wireCmd, payload)
	}

	var firstErr error
	for _, p := range h.peers {
		if sendErr := p.Send(wireCmd, payload); sendErr != nil && firstErr == nil {
			firstErr = sendErr
		}
	}
	return firstErr
}

func encodeOutbound(msg txrelay.NetworkMessage) (payload []byte, command string, err error) {
	switch msg.Command {
	case txrelay.CmdInv:
		vecs := make([]p2p.InvVector, len(msg.Inv))
		for i, inv := range msg.Inv {
			vecs[i] = p2p.InvVector{Type: p2p.InvTypeTx, Hash: inv.Txid}
		}
		payload, err = p2p.EncodeInvPayload(vecs)
		return payload, txrelay.CmdInv, err
	case txrelay.CmdTx:
		if msg.Tx == nil {
			return nil, "", fmt.Errorf("hub: tx command with nil transaction")
		}
		return msg.Tx.Bytes(), txrelay.CmdTx, nil
	default:
		return nil, "", fmt.Errorf("hub: unsupported outbound command %q", msg.Command)
	}
}

// RequestHeaders asks addr for headers extending this node's best chain,
// using the engine's block locator as the common-point hint. Called when a
// new peer connects or the node falls behind.
func (h *Hub) RequestHeaders(addr txrelay.PeerAddr) error {
	payload, err := p2p.EncodeGetHeadersPayload(p2p.GetHeadersPayload{
		Version:      p2p.ProtocolVersionV1,
		BlockLocator: h.state.LocatorHashes(),
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	p, ok := h.peers[addr]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("hub: unknown peer %s", addr)
	}
	return p.Send(p2p.CmdGetHeaders, payload)
}

// Handler returns a p2p.PeerHandler that routes inbound wire messages from
// any peer registered on h into h's BlockchainState and TransactionManager.
func (h *Hub) Handler() p2p.PeerHandler {
	return &handler{hub: h}
}

type handler struct {
	hub *Hub
}

// OnHeaders feeds an unsolicited `headers` message straight into
// BlockchainState.AddHeaders. A rejected batch is reported to the caller
// (Peer.Run applies ban-score accordingly); headers accepted before the
// failure remain in the store.
func (h *handler) OnHeaders(_ *p2p.Peer, headers []consensus.BlockHeader) error {
	_, err := h.hub.state.AddHeaders(headers)
	return err
}

// OnInv is a no-op: the relay only tracks transactions it is itself asked
// to send (via SendTransaction), not ones peers claim to have. Fetching
// advertised-but-unseen inventory is mempool policy, out of this engine's
// scope.
func (h *handler) OnInv(_ *p2p.Peer, _ []p2p.InvVector) error {
	return nil
}

// OnGetData serves cached transactions for the requesting peer's inventory
// request through the TransactionManager, ignoring non-transaction entries.
func (h *handler) OnGetData(peer *p2p.Peer, vecs []p2p.InvVector) error {
	inv := make([]txrelay.Inventory, 0, len(vecs))
	for _, v := range vecs {
		if v.Type != p2p.InvTypeTx && v.Type != p2p.InvTypeWitnessTx {
			continue
		}
		inv = append(inv, txrelay.Inventory{Txid: v.Hash})
	}
	return h.hub.tx.ProcessBitcoinNetworkMessage(h.hub, peerAddr(peer), txrelay.NetworkMessage{
		Command: txrelay.CmdGetData,
		Inv:     inv,
	})
}

// OnNotFound is a no-op: the engine does not track pending fetch requests
// of its own to reconcile against a peer's "not found" reply.
func (h *handler) OnNotFound(_ *p2p.Peer, _ []p2p.InvVector) error {
	return nil
}

// OnGetHeaders is intentionally a no-op returning no headers: this node
// owns the locator-*producing* side (chain.BlockchainState.LocatorHashes,
// used when it is the one asking) and does not serve historical headers
// to peers.
func (h *handler) OnGetHeaders(_ *p2p.Peer, _ *p2p.GetHeadersPayload) ([]consensus.BlockHeader, error) {
	return nil, nil
}

// OnBlock decodes a wire block and extends the chain through
// BlockchainState.AddBlock.
func (h *handler) OnBlock(_ *p2p.Peer, blockBytes []byte) error {
	block, err := consensus.ParseBlockBytes(blockBytes)
	if err != nil {
		return err
	}
	_, err = h.hub.state.AddBlock(block)
	return err
}

// OnTx hands a raw inbound transaction to TransactionManager.SendTransaction,
// which silently drops anything that fails to parse.
func (h *handler) OnTx(_ *p2p.Peer, txBytes []byte) error {
	h.hub.tx.SendTransaction(txBytes)
	return nil
}

func peerAddr(p *p2p.Peer) txrelay.PeerAddr {
	return txrelay.PeerAddr(p.Conn.RemoteAddr().String())
}
