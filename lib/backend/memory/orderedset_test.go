package memory

import (
	"testing"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
)

func newTestSet(t *testing.T) backend.Backend {
	t.Helper()
	b, err := NewOrderedSet(nil)
	if err != nil {
		t.Fatalf("NewOrderedSet: %v", err)
	}
	return b
}

func TestOrderedSetPutRejectsValue(t *testing.T) {
	b := newTestSet(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("x")}); err == nil {
		t.Error("expected non-empty value to be rejected on a set backend")
	}
}

func TestOrderedSetPutExists(t *testing.T) {
	b := newTestSet(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{nil}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	flags, err := b.Exists(0, [][]byte{[]byte("a"), []byte("b")}, 0)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !flags[0] || flags[1] {
		t.Errorf("got %v, want [true false]", flags)
	}
}

func TestOrderedSetListKeyValuesUnsupported(t *testing.T) {
	b := newTestSet(t)
	_, _, err := b.ListKeyValues(0, nil, mode.NewFilter(0, nil), nil, nil, 10)
	if err == nil {
		t.Error("expected ListKeyValues to be unsupported on a set backend")
	}
}

func TestOrderedSetListKeys(t *testing.T) {
	b := newTestSet(t)
	if err := b.Put(0, [][]byte{[]byte("b"), []byte("a")}, [][]byte{nil, nil}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewPackedSink(0)
	sizes, err := b.ListKeys(mode.INCLUSIVE, nil, mode.NewFilter(0, nil), sink, 10)
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if string(sink.Buffer) != "ab" {
		t.Errorf("got %q, want %q", sink.Buffer, "ab")
	}
	if sizes[2] != mode.NoMoreKeys {
		t.Errorf("expected NoMoreKeys sentinel past the last match, got %d", sizes[2])
	}
}

func TestOrderedSetEraseAndConsume(t *testing.T) {
	b := newTestSet(t)
	if err := b.Put(0, [][]byte{[]byte("a"), []byte("b")}, [][]byte{nil, nil}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewUnpackedSink([]uint64{0})
	if _, err := b.Get(mode.CONSUME, [][]byte{[]byte("a")}, sink, 0); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := b.Erase(0, [][]byte{[]byte("b")}, 0); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	count, err := b.Count(0)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("got count %d, want 0", count)
	}
}
