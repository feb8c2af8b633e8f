package txrelay

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rubin.dev/node/consensus"
)

// fakeChannel is a minimal in-memory Channel for tests: a mutable peer
// list plus a log of every Send call.
type fakeChannel struct {
	mu    sync.Mutex
	peers []PeerAddr
	sent  []Command
}

func (c *fakeChannel) AvailableConnections() []PeerAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PeerAddr, len(c.peers))
	copy(out, c.peers)
	return out
}

func (c *fakeChannel) Send(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, cmd)
	return nil
}

func (c *fakeChannel) addPeer(p PeerAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers = append(c.peers, p)
}

func (c *fakeChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *fakeChannel) drain() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.sent
	c.sent = nil
	return out
}

func newTestManager() *TransactionManager {
	return NewTransactionManager(zerolog.Nop(), nil)
}

func sampleTxBytes(locktime uint32) []byte {
	tx := consensus.Transaction{Version: 1, Locktime: locktime}
	return tx.Bytes()
}

// Entries past their relay window are reaped; fresh ones survive.
func TestReap_TimeoutEviction(t *testing.T) {
	m := newTestManager()
	raw := sampleTxBytes(1)
	m.SendTransaction(raw)
	if m.Size() != 1 {
		t.Fatalf("size=%d, want 1", m.Size())
	}

	m.reap()
	if m.Size() != 1 {
		t.Fatalf("size after no-op reap=%d, want 1", m.Size())
	}

	// Rewind the entry's timeout into the past.
	tx, _ := consensus.ParseTransaction(raw)
	txid := tx.Txid()
	m.mu.Lock()
	elem := m.entries[txid]
	elem.Value.(*txEntry).timeoutAt = m.now().Add(-TxTimeout)
	m.mu.Unlock()

	m.reap()
	if m.Size() != 0 {
		t.Fatalf("size after reap=%d, want 0", m.Size())
	}
}

// Each peer is advertised a txid once; a newly connected peer gets it too.
func TestAdvertiseAndGetData_PerPeerDedup(t *testing.T) {
	m := newTestManager()
	raw := sampleTxBytes(1)
	m.SendTransaction(raw)
	tx, _ := consensus.ParseTransaction(raw)
	txid := tx.Txid()

	ch := &fakeChannel{}
	ch.addPeer("peerA")

	m.Tick(ch)
	sent := ch.drain()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one INV to A, got %d", len(sent))
	}
	if sent[0].Message.Command != CmdInv || *sent[0].Address != "peerA" {
		t.Fatalf("unexpected command: %+v", sent[0])
	}

	if err := m.ProcessBitcoinNetworkMessage(ch, "peerA", NetworkMessage{
		Command: CmdGetData,
		Inv:     []Inventory{{Txid: txid}},
	}); err != nil {
		t.Fatalf("getdata: %v", err)
	}
	sent = ch.drain()
	if len(sent) != 1 || sent[0].Message.Command != CmdTx {
		t.Fatalf("expected exactly one Tx command, got %+v", sent)
	}

	// Next tick: nothing new to advertise to A.
	m.Tick(ch)
	if n := ch.sentCount(); n != 0 {
		t.Fatalf("expected zero commands on repeat tick, got %d", n)
	}

	// A new peer should still get the INV.
	ch.addPeer("peerB")
	m.Tick(ch)
	sent = ch.drain()
	if len(sent) != 1 || *sent[0].Address != "peerB" {
		t.Fatalf("expected exactly one INV to peerB, got %+v", sent)
	}
	if len(sent[0].Message.Inv) != 1 || sent[0].Message.Inv[0].Txid != txid {
		t.Fatalf("expected INV to contain the cached txid")
	}
}

func TestSendTransaction_MalformedDropped(t *testing.T) {
	m := newTestManager()
	m.SendTransaction([]byte{0x01, 0x02})
	if m.Size() != 0 {
		t.Fatalf("size=%d, want 0 for malformed input", m.Size())
	}
}

func TestSendTransaction_ResendDoesNotRefreshTimeout(t *testing.T) {
	m := newTestManager()
	raw := sampleTxBytes(7)
	m.SendTransaction(raw)

	tx, _ := consensus.ParseTransaction(raw)
	txid := tx.Txid()

	m.mu.Lock()
	original := m.entries[txid].Value.(*txEntry).timeoutAt
	m.mu.Unlock()

	// Advance the injected clock and resend; the timeout must not move.
	m.now = func() time.Time { return original.Add(time.Hour) }
	m.SendTransaction(raw)

	m.mu.Lock()
	got := m.entries[txid].Value.(*txEntry).timeoutAt
	m.mu.Unlock()
	if !got.Equal(original) {
		t.Fatalf("timeout_at changed on resend: got=%v want=%v", got, original)
	}
}

func TestCache_CapacityEviction(t *testing.T) {
	m := newTestManager()
	var firstTxid [32]byte
	for i := 0; i < TxCacheCapacity+5; i++ {
		raw := sampleTxBytes(uint32(i))
		if i == 0 {
			tx, _ := consensus.ParseTransaction(raw)
			firstTxid = tx.Txid()
		}
		m.SendTransaction(raw)
	}
	if m.Size() != TxCacheCapacity {
		t.Fatalf("size=%d, want %d", m.Size(), TxCacheCapacity)
	}
	m.mu.Lock()
	_, stillPresent := m.entries[firstTxid]
	m.mu.Unlock()
	if stillPresent {
		t.Fatalf("oldest entry should have been evicted")
	}
}

func TestProcessBitcoinNetworkMessage_TooManyInvEntries(t *testing.T) {
	m := newTestManager()
	ch := &fakeChannel{}
	inv := make([]Inventory, MaxInvPerMessage+1)
	err := m.ProcessBitcoinNetworkMessage(ch, "peerA", NetworkMessage{Command: CmdGetData, Inv: inv})
	if err != ErrInvalidMessage {
		t.Fatalf("err=%v, want ErrInvalidMessage", err)
	}
}

func TestMakeIdle_ClearsCache(t *testing.T) {
	m := newTestManager()
	m.SendTransaction(sampleTxBytes(1))
	m.SendTransaction(sampleTxBytes(2))
	m.MakeIdle()
	if m.Size() != 0 {
		t.Fatalf("size=%d, want 0 after MakeIdle", m.Size())
	}
}
