package addrbook

import (
	"testing"
	"time"
)

const testChainID = "00ff00ff00ff00ff"

func openTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := Open(t.TempDir(), testChainID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenRequiresDatadirAndChainID(t *testing.T) {
	if _, err := Open("", testChainID); err == nil {
		t.Fatalf("expected error for empty datadir")
	}
	if _, err := Open(t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for empty chain id")
	}
}

func TestRecordAndAddressesKeyOrder(t *testing.T) {
	b := openTestBook(t)
	now := time.Unix(1_700_000_000, 0)

	for _, addr := range []string{"9.9.9.9:1234", "1.2.3.4:8333", "5.6.7.8:8333"} {
		if err := b.Record(addr, now); err != nil {
			t.Fatalf("record %s: %v", addr, err)
		}
	}

	got, err := b.Addresses()
	if err != nil {
		t.Fatalf("addresses: %v", err)
	}
	want := []string{"1.2.3.4:8333", "5.6.7.8:8333", "9.9.9.9:1234"}
	if len(got) != len(want) {
		t.Fatalf("addresses=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("addresses[%d]=%q, want %q", i, got[i], want[i])
		}
	}
}

func TestLastSeenRoundTripAndRefresh(t *testing.T) {
	b := openTestBook(t)
	first := time.Unix(1_700_000_000, 0)
	later := first.Add(90 * time.Second)

	if err := b.Record("1.2.3.4:8333", first); err != nil {
		t.Fatalf("record: %v", err)
	}
	seen, ok, err := b.LastSeen("1.2.3.4:8333")
	if err != nil || !ok {
		t.Fatalf("last seen: ok=%v err=%v", ok, err)
	}
	if !seen.Equal(first) {
		t.Fatalf("last seen=%v, want %v", seen, first)
	}

	if err := b.Record("1.2.3.4:8333", later); err != nil {
		t.Fatalf("re-record: %v", err)
	}
	seen, ok, err = b.LastSeen("1.2.3.4:8333")
	if err != nil || !ok {
		t.Fatalf("last seen after refresh: ok=%v err=%v", ok, err)
	}
	if !seen.Equal(later) {
		t.Fatalf("last seen=%v, want refreshed %v", seen, later)
	}

	if _, ok, err := b.LastSeen("none:0"); err != nil || ok {
		t.Fatalf("unknown address: ok=%v err=%v", ok, err)
	}
}

func TestForget(t *testing.T) {
	b := openTestBook(t)
	if err := b.Record("1.2.3.4:8333", time.Unix(1_700_000_000, 0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := b.Forget("1.2.3.4:8333"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, ok, err := b.LastSeen("1.2.3.4:8333"); err != nil || ok {
		t.Fatalf("forgotten address still present: ok=%v err=%v", ok, err)
	}
	if err := b.Forget("never-seen:0"); err != nil {
		t.Fatalf("forget unknown: %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir, testChainID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := b.Record("1.2.3.4:8333", time.Unix(1_700_000_000, 0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir, testChainID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	addrs, err := reopened.Addresses()
	if err != nil {
		t.Fatalf("addresses: %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "1.2.3.4:8333" {
		t.Fatalf("addresses after reopen=%v", addrs)
	}
}
