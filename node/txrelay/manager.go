package txrelay

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rubin.dev/node/consensus"
)

const (
	// TxCacheCapacity bounds memory against user-supplied tx sizes.
	TxCacheCapacity = 250
	// TxTimeout is the relay window before a pending transaction is
	// reaped without ever being served.
	TxTimeout = 600 * time.Second
	// MaxInvPerMessage is the Bitcoin protocol limit on inventory items
	// per INV/getdata message.
	MaxInvPerMessage = 50_000
)

// ErrInvalidMessage is returned by ProcessBitcoinNetworkMessage when a
// getdata request exceeds MaxInvPerMessage items.
var ErrInvalidMessage = errors.New("txrelay: getdata exceeds max inventory size")

type txEntry struct {
	txid       [32]byte
	tx         consensus.Transaction
	advertised map[PeerAddr]struct{}
	timeoutAt  time.Time
}

// TransactionManager is a bounded, FIFO-evicting cache of pending outbound
// transactions with per-peer advertisement bookkeeping. It is a
// single-owner synchronous object: every exported method takes an internal
// lock, so the caller does not need its own mutex around it.
type TransactionManager struct {
	logger  zerolog.Logger
	metrics *Metrics
	now     func() time.Time

	mu      sync.Mutex
	order   *list.List // of *txEntry, front = oldest inserted
	entries map[[32]byte]*list.Element
}

// NewTransactionManager yields an empty insertion-ordered transaction map.
func NewTransactionManager(logger zerolog.Logger, metrics *Metrics) *TransactionManager {
	return &TransactionManager{
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[[32]byte]*list.Element),
	}
}

// Size returns the number of pending transactions currently cached.
func (m *TransactionManager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// SendTransaction deserializes raw wire bytes into a transaction and
// queues it for relay. Malformed input is silently dropped: it is
// user-supplied bytes, no peer is involved. A transaction already in the
// cache is left unchanged — SendTransaction never refreshes an existing
// entry's timeout.
func (m *TransactionManager) SendTransaction(raw []byte) {
	tx, err := consensus.ParseTransaction(raw)
	if err != nil {
		m.logger.Debug().Err(err).Msg("txrelay: dropping malformed transaction")
		return
	}
	txid := tx.Txid()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[txid]; ok {
		return
	}

	if m.order.Len() >= TxCacheCapacity {
		oldest := m.order.Front()
		if oldest != nil {
			evicted := oldest.Value.(*txEntry)
			delete(m.entries, evicted.txid)
			m.order.Remove(oldest)
		}
	}

	entry := &txEntry{
		txid:       txid,
		tx:         tx,
		advertised: make(map[PeerAddr]struct{}),
		timeoutAt:  m.now().Add(TxTimeout),
	}
	elem := m.order.PushBack(entry)
	m.entries[txid] = elem
}

// Tick is called periodically by the driver: it advertises pending txids
// to peers, reaps expired entries, and publishes the cache-size metric.
func (m *TransactionManager) Tick(channel Channel) {
	m.AdvertiseTxids(channel)
	m.reap()
	m.metrics.setTxStoreSize(m.Size())
}

// AdvertiseTxids builds a per-peer INV batch of not-yet-advertised txids,
// in cache insertion order. An entry's advertised set is updated
// immediately as it is added to a batch, so later peers in this same call
// (and the 50,000-entry flush path) see the update.
func (m *TransactionManager) AdvertiseTxids(channel Channel) {
	peers := channel.AvailableConnections()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, peer := range peers {
		batch := make([]Inventory, 0, 16)
		for e := m.order.Front(); e != nil; e = e.Next() {
			entry := e.Value.(*txEntry)
			if _, ok := entry.advertised[peer]; ok {
				continue
			}
			batch = append(batch, Inventory{Txid: entry.txid})
			entry.advertised[peer] = struct{}{}

			if len(batch) == MaxInvPerMessage {
				// INV limit reached: flush to every currently available
				// peer, not just this one.
				all := channel.AvailableConnections()
				m.logger.Info().Int("batch_size", len(batch)).Int("peers", len(all)).Msg("txrelay: flushing max-size inv batch")
				for _, p := range all {
					addr := p
					_ = channel.Send(Command{Address: &addr, Message: NetworkMessage{Command: CmdInv, Inv: batch}})
				}
				batch = make([]Inventory, 0, 16)
			}
		}
		if len(batch) > 0 {
			addr := peer
			_ = channel.Send(Command{Address: &addr, Message: NetworkMessage{Command: CmdInv, Inv: batch}})
		}
	}
}

// ProcessBitcoinNetworkMessage handles inbound getdata requests, serving
// cached transactions to the requesting peer. Every other message kind is
// a no-op success.
func (m *TransactionManager) ProcessBitcoinNetworkMessage(channel Channel, peerAddr PeerAddr, message NetworkMessage) error {
	if message.Command != CmdGetData {
		return nil
	}
	if len(message.Inv) > MaxInvPerMessage {
		return ErrInvalidMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, inv := range message.Inv {
		elem, ok := m.entries[inv.Txid]
		if !ok {
			continue
		}
		entry := elem.Value.(*txEntry)
		txCopy := entry.tx
		addr := peerAddr
		_ = channel.Send(Command{Address: &addr, Message: NetworkMessage{Command: CmdTx, Tx: &txCopy}})
	}
	return nil
}

// MakeIdle clears the cache.
func (m *TransactionManager) MakeIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = list.New()
	m.entries = make(map[[32]byte]*list.Element)
}

// reap drops entries whose timeout has elapsed, logging a warning per
// drop indicating no peer picked it up.
func (m *TransactionManager) reap() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var next *list.Element
	for e := m.order.Front(); e != nil; e = next {
		next = e.Next()
		entry := e.Value.(*txEntry)
		if entry.timeoutAt.Before(now) {
			m.logger.Warn().Hex("txid", entry.txid[:]).Msg("txrelay: reaping transaction: no peer picked it up in time")
			delete(m.entries, entry.txid)
			m.order.Remove(e)
		}
	}
}
