package bulk

import (
	"time"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/provider"
)

// Every handler below follows the same three-phase shape: the sizes for
// each key/value have already been pulled and validated by the caller
// (the RPC layer, which knows the wire framing); the handler slices
// views directly out of the staging Buffer, calls into the backend, and
// writes results back into the same buffer through a packedSink. No
// handler here copies key or value bytes itself.

// Exists runs a bulk Exists call: keys are read from buf at keyOffset,
// sized by keySizes.
func Exists(db *provider.Database, buf *Buffer, m mode.Bits, keyOffset int, keySizes []uint64, timeout time.Duration) ([]bool, *backend.Error) {
	keys, _ := SliceViews(buf, keyOffset, keySizes)
	return db.Backend.Exists(m, keys, timeout)
}

// Length runs a bulk Length call.
func Length(db *provider.Database, buf *Buffer, m mode.Bits, keyOffset int, keySizes []uint64, timeout time.Duration) ([]uint64, *backend.Error) {
	keys, _ := SliceViews(buf, keyOffset, keySizes)
	return db.Backend.Length(m, keys, timeout)
}

// Put runs a bulk Put call: keys and values are read from two regions
// of buf, packed back-to-back within each region.
func Put(db *provider.Database, buf *Buffer, m mode.Bits, keyOffset int, keySizes []uint64, valOffset int, valSizes []uint64) *backend.Error {
	keys, _ := SliceViews(buf, keyOffset, keySizes)
	values, _ := SliceViews(buf, valOffset, valSizes)
	return db.Backend.Put(m, keys, values)
}

// Get runs a bulk Get call, writing each retrieved value back into buf
// starting at resultOffset, packed back-to-back up to resultCap bytes.
func Get(db *provider.Database, buf *Buffer, m mode.Bits, keyOffset int, keySizes []uint64, resultOffset, resultCap int, timeout time.Duration) ([]uint64, *backend.Error) {
	keys, _ := SliceViews(buf, keyOffset, keySizes)
	sink := NewSink(buf, resultOffset, resultCap)
	return db.Backend.Get(m, keys, sink, timeout)
}

// Erase runs a bulk Erase call.
func Erase(db *provider.Database, buf *Buffer, m mode.Bits, keyOffset int, keySizes []uint64, timeout time.Duration) *backend.Error {
	keys, _ := SliceViews(buf, keyOffset, keySizes)
	return db.Backend.Erase(m, keys, timeout)
}

// ListKeys runs a bulk ListKeys call, writing emitted keys into buf
// starting at keyResultOffset.
func ListKeys(db *provider.Database, buf *Buffer, m mode.Bits, fromKey []byte, filter mode.Filter, keyResultOffset, keyResultCap, maxRecords int) ([]uint64, *backend.Error) {
	sink := NewSink(buf, keyResultOffset, keyResultCap)
	return db.Backend.ListKeys(m, fromKey, filter, sink, maxRecords)
}

// ListKeyValues runs a bulk ListKeyValues call, writing emitted keys and
// values into two separate regions of buf.
func ListKeyValues(db *provider.Database, buf *Buffer, m mode.Bits, fromKey []byte, filter mode.Filter,
	keyResultOffset, keyResultCap, valResultOffset, valResultCap, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	keySink := NewSink(buf, keyResultOffset, keyResultCap)
	valSink := NewSink(buf, valResultOffset, valResultCap)
	return db.Backend.ListKeyValues(m, fromKey, filter, keySink, valSink, maxRecords)
}

// ---- Direct variants: skip the pull/push staging dance and operate on
// inline byte slices already held in process memory (used by an
// in-process client or a transport that decoded the request into
// [][]byte directly rather than a packed region). ----

func ExistsDirect(db *provider.Database, m mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	return db.Backend.Exists(m, keys, timeout)
}

func LengthDirect(db *provider.Database, m mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	return db.Backend.Length(m, keys, timeout)
}

func PutDirect(db *provider.Database, m mode.Bits, keys, values [][]byte) *backend.Error {
	return db.Backend.Put(m, keys, values)
}

func GetDirect(db *provider.Database, m mode.Bits, keys [][]byte, timeout time.Duration) ([][]byte, []uint64, *backend.Error) {
	sink := backend.NewPackedSink(0)
	sizes, err := db.Backend.Get(m, keys, sink, timeout)
	if err != nil {
		return nil, nil, err
	}
	return splitPacked(sink, sizes), sizes, nil
}

func EraseDirect(db *provider.Database, m mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	return db.Backend.Erase(m, keys, timeout)
}

func CountDirect(db *provider.Database, m mode.Bits) (uint64, *backend.Error) {
	return db.Backend.Count(m)
}

func ListKeysDirect(db *provider.Database, m mode.Bits, fromKey []byte, filter mode.Filter, maxRecords int) ([][]byte, []uint64, *backend.Error) {
	sink := backend.NewPackedSink(0)
	sizes, err := db.Backend.ListKeys(m, fromKey, filter, sink, maxRecords)
	if err != nil {
		return nil, nil, err
	}
	return splitPacked(sink, sizes), sizes, nil
}

func ListKeyValuesDirect(db *provider.Database, m mode.Bits, fromKey []byte, filter mode.Filter, maxRecords int) (keys, values [][]byte, ksizes, vsizes []uint64, err *backend.Error) {
	keySink := backend.NewPackedSink(0)
	valSink := backend.NewPackedSink(0)
	ksizes, vsizes, err = db.Backend.ListKeyValues(m, fromKey, filter, keySink, valSink, maxRecords)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return splitPacked(keySink, ksizes), splitPacked(valSink, vsizes), ksizes, vsizes, nil
}

// splitPacked re-slices a PackedSink's contiguous buffer back into
// per-record views according to sizes, skipping sentinel and
// zero-length (elided) entries.
func splitPacked(sink *backend.PackedSink, sizes []uint64) [][]byte {
	out := make([][]byte, len(sizes))
	offset := 0
	for i, size := range sizes {
		if mode.IsSentinel(size) || size == 0 {
			continue
		}
		out[i] = sink.Buffer[offset : offset+int(size)]
		offset += int(size)
	}
	return out
}
