package memory

import (
	"testing"
	"time"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
)

func newTestMap(t *testing.T) backend.Backend {
	t.Helper()
	b, err := NewOrderedMap(nil)
	if err != nil {
		t.Fatalf("NewOrderedMap: %v", err)
	}
	return b
}

func TestOrderedMapPutGet(t *testing.T) {
	b := newTestMap(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewUnpackedSink([]uint64{1})
	sizes, err := b.Get(0, [][]byte{[]byte("a")}, sink, 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sizes[0] != 1 || string(sink.Slots[0]) != "1" {
		t.Errorf("got size %d value %q, want 1 %q", sizes[0], sink.Slots[0], "1")
	}
}

func TestOrderedMapGetMissing(t *testing.T) {
	b := newTestMap(t)
	sink := backend.NewUnpackedSink([]uint64{0})
	sizes, err := b.Get(0, [][]byte{[]byte("missing")}, sink, 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sizes[0] != mode.KeyNotFound {
		t.Errorf("got %d, want KeyNotFound", sizes[0])
	}
}

func TestOrderedMapNewOnlyRejectsExisting(t *testing.T) {
	b := newTestMap(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b.Put(mode.NEW_ONLY, [][]byte{[]byte("a")}, [][]byte{[]byte("2")}); err == nil {
		t.Error("expected NEW_ONLY put of existing key to fail")
	}
}

func TestOrderedMapExistOnlyRejectsMissing(t *testing.T) {
	b := newTestMap(t)
	if err := b.Put(mode.EXIST_ONLY, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err == nil {
		t.Error("expected EXIST_ONLY put of missing key to fail")
	}
}

func TestOrderedMapAppend(t *testing.T) {
	b := newTestMap(t)
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

func TestOrderedMapConsumeDeletes(t *testing.T) {
	b := newTestMap(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewUnpackedSink([]uint64{1})
	if _, err := b.Get(mode.CONSUME, [][]byte{[]byte("a")}, sink, 0); err != nil {
		t.Fatalf("Get: %v", err)
	}
	flags, err := b.Exists(0, [][]byte{[]byte("a")}, 0)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if flags[0] {
		t.Error("expected key to be gone after CONSUME")
	}
}

func TestOrderedMapEraseRemoves(t *testing.T) {
	b := newTestMap(t)
	if err := b.Put(0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
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

func TestOrderedMapWaitWakesOnPut(t *testing.T) {
	b := newTestMap(t)
	done := make(chan struct{})
	go func() {
		flags, err := b.Exists(mode.WAIT, [][]byte{[]byte("a")}, time.Second)
		if err != nil {
			t.Errorf("Exists: %v", err)
		}
		if len(flags) != 1 || !flags[0] {
			t.Errorf("expected key to be found after wake, got %v", flags)
		}
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	if err := b.Put(mode.NOTIFY, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestOrderedMapWaitTimesOut(t *testing.T) {
	b := newTestMap(t)
	_, err := b.Exists(mode.WAIT, [][]byte{[]byte("nope")}, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if err.Code != backend.ErrTimeout {
		t.Errorf("got code %v, want ErrTimeout", err.Code)
	}
}

func TestOrderedMapListKeysOrderedWithFromKey(t *testing.T) {
	b := newTestMap(t)
	keys := [][]byte{[]byte("c"), []byte("a"), []byte("b")}
	values := [][]byte{[]byte("3"), []byte("1"), []byte("2")}
	if err := b.Put(0, keys, values); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewPackedSink(0)
	sizes, err := b.ListKeys(mode.INCLUSIVE, []byte("a"), mode.NewFilter(0, nil), sink, 10)
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if sizes[0] != 1 || sizes[1] != 1 || sizes[2] != 1 || sizes[3] != mode.NoMoreKeys {
		t.Errorf("unexpected sizes %v", sizes)
	}
	if string(sink.Buffer) != "abc" {
		t.Errorf("got %q, want %q", sink.Buffer, "abc")
	}
}

func TestOrderedMapListKeysExclusiveFromKey(t *testing.T) {
	b := newTestMap(t)
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	values := [][]byte{[]byte("1"), []byte("2"), []byte("3")}
	if err := b.Put(0, keys, values); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sink := backend.NewPackedSink(0)
	_, err := b.ListKeys(0, []byte("a"), mode.NewFilter(0, nil), sink, 10)
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if string(sink.Buffer) != "bc" {
		t.Errorf("got %q, want %q (a should be excluded)", sink.Buffer, "bc")
	}
}

func TestOrderedMapListKeyValuesKeepLast(t *testing.T) {
	b := newTestMap(t)
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	values := [][]byte{[]byte("1"), []byte("2"), []byte("3")}
	if err := b.Put(0, keys, values); err != nil {
		t.Fatalf("Put: %v", err)
	}
	keySink := backend.NewPackedSink(0)
	valSink := backend.NewPackedSink(0)
	ksizes, vsizes, err := b.ListKeyValues(mode.IGNORE_KEYS|mode.KEEP_LAST, nil, mode.NewFilter(0, nil), keySink, valSink, 2)
	if err != nil {
		t.Fatalf("ListKeyValues: %v", err)
	}
	if ksizes[0] != 0 {
		t.Errorf("expected elided first key size 0, got %d", ksizes[0])
	}
	if string(keySink.Buffer) != "b" {
		t.Errorf("expected only the last key %q in the sink, got %q", "b", keySink.Buffer)
	}
	if string(valSink.Buffer) != "12" {
		t.Errorf("got values %q, want %q", valSink.Buffer, "12")
	}
	if vsizes[0] != 1 || vsizes[1] != 1 {
		t.Errorf("unexpected value sizes %v", vsizes)
	}
}

func TestOrderedMapZeroLengthKeyRejected(t *testing.T) {
	b := newTestMap(t)
	if err := b.Put(0, [][]byte{{}}, [][]byte{[]byte("x")}); err == nil {
		t.Error("expected zero-length key to be rejected")
	}
}

func TestOrderedMapSupportsMode(t *testing.T) {
	b := newTestMap(t)
	if !b.SupportsMode(mode.WAIT | mode.NOTIFY) {
		t.Error("expected WAIT|NOTIFY to be supported")
	}
	if b.SupportsMode(mode.Bits(1) << 30) {
		t.Error("expected an undefined high bit to be unsupported")
	}
}
