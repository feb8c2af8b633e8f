// Package addrbook persists the peer addresses a node has learned, keyed
// per chain. Chain state is rebuilt from genesis on every start; the
// address book is the one piece of node state kept on disk, so a restarted
// node can redial peers without fresh bootstrap flags.
package addrbook

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketPeers = []byte("peer_addrs")

// Book is a bolt-backed set of peer addresses (host:port), each with the
// wall-clock time it was last seen.
type Book struct {
	path string
	db   *bolt.DB
}

// Open opens (creating if needed) the address book for one chain:
// datadir/chains/<chain_id_hex>/peers.db.
func Open(datadir string, chainIDHex string) (*Book, error) {
	if datadir == "" {
		return nil, fmt.Errorf("addrbook: datadir required")
	}
	if chainIDHex == "" {
		return nil, fmt.Errorf("addrbook: chain_id_hex required")
	}

	dir := filepath.Join(datadir, "chains", chainIDHex)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("addrbook: mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, "peers.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("addrbook: open bbolt: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPeers)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Book{path: path, db: db}, nil
}

func (b *Book) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Path returns the on-disk location of the book.
func (b *Book) Path() string { return b.path }

// Record upserts addr with lastSeen. Re-recording a known address only
// advances its timestamp.
func (b *Book) Record(addr string, lastSeen time.Time) error {
	if addr == "" {
		return fmt.Errorf("addrbook: empty address")
	}
	sec := lastSeen.Unix()
	if sec < 0 {
		sec = 0
	}
	var val [8]byte
	binary.LittleEndian.PutUint64(val[:], uint64(sec))
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPeers).Put([]byte(addr), val[:])
	})
}

// LastSeen reports when addr was last recorded, if it is known.
func (b *Book) LastSeen(addr string) (time.Time, bool, error) {
	var out time.Time
	var ok bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPeers).Get([]byte(addr))
		if len(v) != 8 {
			return nil
		}
		out = time.Unix(int64(binary.LittleEndian.Uint64(v)), 0) // #nosec G115 -- written from a clamped non-negative int64.
		ok = true
		return nil
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return out, ok, nil
}

// Forget removes addr; forgetting an unknown address is a no-op.
func (b *Book) Forget(addr string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPeers).Delete([]byte(addr))
	})
}

// Addresses returns every known address in key order.
func (b *Book) Addresses() ([]string, error) {
	var out []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPeers).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
