package disk

import (
	"encoding/json"
	"testing"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
)

func newTestBadgerDB(t *testing.T) backend.Backend {
	t.Helper()
	cfg, _ := json.Marshal(BadgerConfig{Path: t.TempDir()})
	b, err := NewBadgerDB(cfg)
	if err != nil {
		t.Fatalf("NewBadgerDB: %v", err)
	}
	t.Cleanup(func() { _ = b.Destroy() })
	return b
}

func TestBadgerDBPutGetErase(t *testing.T) {
	b := newTestBadgerDB(t)
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
}

func TestBadgerDBListKeysUnsupported(t *testing.T) {
	b := newTestBadgerDB(t)
	_, err := b.ListKeys(0, nil, mode.NewFilter(0, nil), nil, 10)
	if err == nil {
		t.Error("expected ListKeys to be unsupported on the tkrzw backend")
	}
}
