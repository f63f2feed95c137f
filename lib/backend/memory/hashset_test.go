package memory

import (
	"testing"
)

func newTestHashSet(t *testing.T) *hashSet {
	t.Helper()
	b, err := NewHashSet(nil)
	if err != nil {
		t.Fatalf("NewHashSet: %v", err)
	}
	return b.(*hashSet)
}

func TestHashSetPutRejectsValue(t *testing.T) {
	b := newTestHashSet(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("x")}); err == nil {
		t.Error("expected non-empty value to be rejected on an unordered set")
	}
}

func TestHashSetPutExistsErase(t *testing.T) {
	b := newTestHashSet(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{nil}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	flags, err := b.Exists(0, [][]byte{[]byte("a")}, 0)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !flags[0] {
		t.Error("expected key to exist")
	}
	if err := b.Erase(0, [][]byte{[]byte("a")}, 0); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	flags, err = b.Exists(0, [][]byte{[]byte("a")}, 0)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if flags[0] {
		t.Error("expected key to be gone after Erase")
	}
}
