package consensus

import "encoding/binary"

// Transaction is the minimal Bitcoin-style transaction shape the relay cares
// about: enough structure to compute a stable txid and to re-serialize for
// relay to a requesting peer. Script and signature semantics are opaque byte
// blobs here; validating them is a mempool policy engine's job, not the
// relay's.
type Transaction struct {
	Version  uint32
	Inputs   []TxIn
	Outputs  []TxOut
	Locktime uint32
}

type TxIn struct {
	PrevTxid  [32]byte
	PrevVout  uint32
	ScriptSig []byte
	Sequence  uint32
}

type TxOut struct {
	Value        uint64
	ScriptPubKey []byte
}

const maxScriptBytes = 10_000_000

// ParseTransaction deserialises raw wire bytes into a Transaction, rejecting
// malformed or trailing-byte input. It performs no script or signature
// validation.
func ParseTransaction(raw []byte) (Transaction, error) {
	cur := newCursor(raw)
	tx, err := parseTransactionFromCursor(cur)
	if err != nil {
		return tx, err
	}
	if cur.remaining() != 0 {
		return tx, txerr(TX_ERR_PARSE, "tx: trailing bytes")
	}
	return tx, nil
}

// parseTransactionFromCursor deserialises one transaction starting at cur's
// current position, leaving cur positioned just past it. Unlike
// ParseTransaction, it does not require the cursor to be fully consumed,
// so callers (e.g. block parsing) can read several transactions back to
// back from the same buffer.
func parseTransactionFromCursor(cur *cursor) (Transaction, error) {
	var tx Transaction

	version, err := cur.readU32LE()
	if err != nil {
		return tx, txerr(TX_ERR_PARSE, "tx: version")
	}
	tx.Version = version

	inCount, err := cur.readCompactSize()
	if err != nil {
		return tx, txerr(TX_ERR_PARSE, "tx: input count")
	}
	tx.Inputs = make([]TxIn, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		var in TxIn
		prevTxid, err := cur.readExact(32)
		if err != nil {
			return tx, txerr(TX_ERR_PARSE, "tx: prev txid")
		}
		copy(in.PrevTxid[:], prevTxid)
		in.PrevVout, err = cur.readU32LE()
		if err != nil {
			return tx, txerr(TX_ERR_PARSE, "tx: prev vout")
		}
		scriptLen, err := cur.readCompactSize()
		if err != nil || scriptLen > maxScriptBytes {
			return tx, txerr(TX_ERR_PARSE, "tx: script_sig length")
		}
		script, err := cur.readExact(int(scriptLen))
		if err != nil {
			return tx, txerr(TX_ERR_PARSE, "tx: script_sig")
		}
		in.ScriptSig = append([]byte(nil), script...)
		in.Sequence, err = cur.readU32LE()
		if err != nil {
			return tx, txerr(TX_ERR_PARSE, "tx: sequence")
		}
		tx.Inputs = append(tx.Inputs, in)
	}

	outCount, err := cur.readCompactSize()
	if err != nil {
		return tx, txerr(TX_ERR_PARSE, "tx: output count")
	}
	tx.Outputs = make([]TxOut, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		var out TxOut
		out.Value, err = cur.readU64LE()
		if err != nil {
			return tx, txerr(TX_ERR_PARSE, "tx: value")
		}
		scriptLen, err := cur.readCompactSize()
		if err != nil || scriptLen > maxScriptBytes {
			return tx, txerr(TX_ERR_PARSE, "tx: script_pubkey length")
		}
		script, err := cur.readExact(int(scriptLen))
		if err != nil {
			return tx, txerr(TX_ERR_PARSE, "tx: script_pubkey")
		}
		out.ScriptPubKey = append([]byte(nil), script...)
		tx.Outputs = append(tx.Outputs, out)
	}

	locktime, err := cur.readU32LE()
	if err != nil {
		return tx, txerr(TX_ERR_PARSE, "tx: locktime")
	}
	tx.Locktime = locktime

	return tx, nil
}

// Bytes re-serialises the transaction to its canonical wire form.
func (tx Transaction) Bytes() []byte {
	out := make([]byte, 0, 64)
	var tmp4 [4]byte
	var tmp8 [8]byte

	binary.LittleEndian.PutUint32(tmp4[:], tx.Version)
	out = append(out, tmp4[:]...)

	out = append(out, AppendCompactSize(nil, uint64(len(tx.Inputs)))...)
	for _, in := range tx.Inputs {
		out = append(out, in.PrevTxid[:]...)
		binary.LittleEndian.PutUint32(tmp4[:], in.PrevVout)
		out = append(out, tmp4[:]...)
		out = append(out, AppendCompactSize(nil, uint64(len(in.ScriptSig)))...)
		out = append(out, in.ScriptSig...)
		binary.LittleEndian.PutUint32(tmp4[:], in.Sequence)
		out = append(out, tmp4[:]...)
	}

	out = append(out, AppendCompactSize(nil, uint64(len(tx.Outputs)))...)
	for _, o := range tx.Outputs {
		binary.LittleEndian.PutUint64(tmp8[:], o.Value)
		out = append(out, tmp8[:]...)
		out = append(out, AppendCompactSize(nil, uint64(len(o.ScriptPubKey)))...)
		out = append(out, o.ScriptPubKey...)
	}

	binary.LittleEndian.PutUint32(tmp4[:], tx.Locktime)
	out = append(out, tmp4[:]...)
	return out
}

// Txid returns the double-SHA256 hash of the transaction's canonical
// serialization.
func (tx Transaction) Txid() [32]byte {
	return doubleSHA256(tx.Bytes())
}
