package disk

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
)

func newTestBoltDB(t *testing.T) backend.Backend {
	t.Helper()
	cfg, _ := json.Marshal(BoltDBConfig{Path: filepath.Join(t.TempDir(), "bolt.db")})
	b, err := NewBoltDB(cfg)
	if err != nil {
		t.Fatalf("NewBoltDB: %v", err)
	}
	t.Cleanup(func() { _ = b.Destroy() })
	return b
}

func TestBoltDBPutGetAppend(t *testing.T) {
	b := newTestBoltDB(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("foo")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b.Put(mode.APPEND, [][]byte{[]byte("a")}, [][]byte{[]byte("bar")}); err != nil {
		t.Fatalf("Put append: %v", err)
	}
	sink := backend.NewUnpackedSink([]uint64{6})
	if _, err := b.Get(0, [][]byte{[]byte("a")}, sink, 0); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(sink.Slots[0]) != "foobar" {
		t.Errorf("got %q, want %q", sink.Slots[0], "foobar")
	}
}

func TestBoltDBNewOnlyRejectsExisting(t *testing.T) {
	b := newTestBoltDB(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b.Put(mode.NEW_ONLY, [][]byte{[]byte("a")}, [][]byte{[]byte("2")}); err == nil {
		t.Error("expected NEW_ONLY put of an existing key to fail")
	}
}
