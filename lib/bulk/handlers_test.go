package bulk

import (
	"testing"

	_ "github.com/kvprovider/kvprovider/lib/backend/memory"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/provider"
)

func newTestDatabase(t *testing.T) *provider.Database {
	t.Helper()
	p := provider.New("")
	db, err := p.OpenDatabase("unordered_map", "orders", nil)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	return db
}

func TestDirectPutGetErase(t *testing.T) {
	db := newTestDatabase(t)
	keys := [][]byte{[]byte("a"), []byte("b")}
	values := [][]byte{[]byte("1"), []byte("22")}

	if err := PutDirect(db, 0, keys, values); err != nil {
		t.Fatalf("PutDirect: %v", err)
	}

	got, sizes, err := GetDirect(db, 0, keys, 0)
	if err != nil {
		t.Fatalf("GetDirect: %v", err)
	}
	if len(got) != 2 || string(got[0]) != "1" || string(got[1]) != "22" {
		t.Fatalf("GetDirect returned %v", got)
	}
	if sizes[0] != 1 || sizes[1] != 2 {
		t.Fatalf("GetDirect sizes = %v", sizes)
	}

	if err := EraseDirect(db, 0, keys[:1], 0); err != nil {
		t.Fatalf("EraseDirect: %v", err)
	}
	flags, err := ExistsDirect(db, 0, keys, 0)
	if err != nil {
		t.Fatalf("ExistsDirect: %v", err)
	}
	if flags[0] || !flags[1] {
		t.Fatalf("ExistsDirect after erase = %v", flags)
	}
}

func TestDirectGetMissingKeyIsSentinel(t *testing.T) {
	db := newTestDatabase(t)
	_, sizes, err := GetDirect(db, 0, [][]byte{[]byte("missing")}, 0)
	if err != nil {
		t.Fatalf("GetDirect: %v", err)
	}
	if !mode.IsSentinel(sizes[0]) {
		t.Errorf("expected a sentinel size for a missing key, got %d", sizes[0])
	}
}

func TestCountDirect(t *testing.T) {
	db := newTestDatabase(t)
	n, err := CountDirect(db, 0)
	if err != nil {
		t.Fatalf("CountDirect: %v", err)
	}
	if n != 0 {
		t.Fatalf("CountDirect on an empty database = %d, want 0", n)
	}

	keys := [][]byte{[]byte("a"), []byte("b")}
	values := [][]byte{[]byte("1"), []byte("2")}
	if err := PutDirect(db, 0, keys, values); err != nil {
		t.Fatalf("PutDirect: %v", err)
	}

	n, err = CountDirect(db, 0)
	if err != nil {
		t.Fatalf("CountDirect: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountDirect after two puts = %d, want 2", n)
	}
}

func TestBufferedPutGet(t *testing.T) {
	db := newTestDatabase(t)
	buf := &Buffer{}

	key, val := []byte("k"), []byte("value")
	buf.Push(0, key)
	buf.Push(len(key), val)

	if err := Put(db, buf, 0, 0, []uint64{uint64(len(key))}, len(key), []uint64{uint64(len(val))}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	resultOffset := len(key) + len(val)
	sizes, err := Get(db, buf, 0, 0, []uint64{uint64(len(key))}, resultOffset, 64, 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got := buf.Pull(resultOffset, int(sizes[0]))
	if string(got) != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
}

func TestListKeysDirectUnsupportedOnHashMap(t *testing.T) {
	db := newTestDatabase(t)
	if _, _, err := ListKeysDirect(db, 0, nil, mode.NewFilter(0, nil), 10); err == nil {
		t.Error("expected ListKeysDirect to fail on an unordered_map backend")
	}
}
