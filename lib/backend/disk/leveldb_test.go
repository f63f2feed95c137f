package disk

import (
	"encoding/json"
	"testing"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
)

func newTestLevelDB(t *testing.T) backend.Backend {
	t.Helper()
	cfg, _ := json.Marshal(LevelDBConfig{Path: t.TempDir()})
	b, err := NewLevelDB(cfg)
	if err != nil {
		t.Fatalf("NewLevelDB: %v", err)
	}
	t.Cleanup(func() { _ = b.Destroy() })
	return b
}

func TestLevelDBPutGetErase(t *testing.T) {
	b := newTestLevelDB(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewUnpackedSink([]uint64{1})
	sizes, err := b.Get(0, [][]byte{[]byte("a")}, sink, 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sizes[0] != 1 || string(sink.Slots[0]) != "1" {
		t.Errorf("got size %d value %q", sizes[0], sink.Slots[0])
	}
	if err := b.Erase(0, [][]byte{[]byte("a")}, 0); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	flags, err := b.Exists(0, [][]byte{[]byte("a")}, 0)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if flags[0] {
		t.Error("expected key to be gone after Erase")
	}
}

func TestLevelDBListKeysOrdered(t *testing.T) {
	b := newTestLevelDB(t)
	keys := [][]byte{[]byte("c"), []byte("a"), []byte("b")}
	values := [][]byte{[]byte("3"), []byte("1"), []byte("2")}
	if err := b.Put(0, keys, values); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewPackedSink(0)
	_, err := b.ListKeys(mode.INCLUSIVE, nil, mode.NewFilter(0, nil), sink, 10)
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if string(sink.Buffer) != "abc" {
		t.Errorf("got %q, want %q", sink.Buffer, "abc")
	}
}

func TestLevelDBRegisteredUnderBothTags(t *testing.T) {
	if _, ok := backend.Lookup("leveldb"); !ok {
		t.Error("expected leveldb tag to be registered")
	}
	if _, ok := backend.Lookup("rocksdb"); !ok {
		t.Error("expected rocksdb tag to be registered")
	}
}
