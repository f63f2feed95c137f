package memory

import (
	"testing"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
)

func newTestHashMap(t *testing.T) backend.Backend {
	t.Helper()
	b, err := NewHashMap(nil)
	if err != nil {
		t.Fatalf("NewHashMap: %v", err)
	}
	return b
}

func TestHashMapPutGet(t *testing.T) {
	b := newTestHashMap(t)
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
}

func TestHashMapListKeysUnsupported(t *testing.T) {
	b := newTestHashMap(t)
	_, err := b.ListKeys(0, nil, mode.NewFilter(0, nil), nil, 10)
	if err == nil {
		t.Error("expected ListKeys to be unsupported on an unordered map")
	}
}

func TestHashMapEraseAndCount(t *testing.T) {
	b := newTestHashMap(t)
	if err := b.Put(0, [][]byte{[]byte("a"), []byte("b")}, [][]byte{[]byte("1"), []byte("2")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b.Erase(0, [][]byte{[]byte("a")}, 0); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	count, err := b.Count(0)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d, want 1", count)
	}
}
