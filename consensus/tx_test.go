package consensus

import "testing"

func sampleTx() Transaction {
	var prev [32]byte
	prev[0] = 0x01
	return Transaction{
		Version: 1,
		Inputs: []TxIn{
			{PrevTxid: prev, PrevVout: 0, ScriptSig: []byte{0xde, 0xad}, Sequence: 0xffffffff},
		},
		Outputs: []TxOut{
			{Value: 5000, ScriptPubKey: []byte{0x76, 0xa9}},
		},
		Locktime: 0,
	}
}

func TestParseTransaction_RoundTrip(t *testing.T) {
	tx := sampleTx()
	raw := tx.Bytes()
	parsed, err := ParseTransaction(raw)
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	if parsed.Txid() != tx.Txid() {
		t.Fatalf("txid mismatch after round trip")
	}
}

func TestParseTransaction_RejectsTrailingBytes(t *testing.T) {
	raw := append(sampleTx().Bytes(), 0x00)
	if _, err := ParseTransaction(raw); err == nil {
		t.Fatalf("expected error for trailing bytes")
	}
}

func TestParseTransaction_RejectsTruncated(t *testing.T) {
	raw := sampleTx().Bytes()
	if _, err := ParseTransaction(raw[:len(raw)-5]); err == nil {
		t.Fatalf("expected error for truncated input")
	}
}

func TestTxid_Deterministic(t *testing.T) {
	tx := sampleTx()
	if tx.Txid() != tx.Txid() {
		t.Fatalf("txid must be deterministic")
	}
}
