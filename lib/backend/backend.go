package backend

import (
	"time"

	"github.com/kvprovider/kvprovider/lib/mode"
)

// Info reports metadata about an open backend instance, mirroring the
// teacher's db.DatabaseInfo but generalized away from a single
// implementation tag.
type Info struct {
	Name     string      `json:"name"`
	Count    uint64      `json:"count"`
	Modes    mode.Bits   `json:"supported_modes"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// Backend is the uniform batch key/value contract every storage engine in
// this module implements: ordered/hash in-memory maps and sets, and the
// disk-backed engines under lib/backend/disk. All batch arguments are
// plain [][]byte; the bulk-transfer packing/unpacking that the wire
// protocol requires happens one layer up, in lib/bulk, so that a Backend
// implementation never has to know whether its caller arrived over a
// bulk-region RPC or a direct in-process call.
type Backend interface {
	// Name returns the backend's registration tag (e.g. "map", "set",
	// "leveldb").
	Name() string

	// Config returns the backend's configuration as a JSON snapshot with
	// defaults filled in and (for provider-managed databases) __id__ set.
	Config() []byte

	// SupportsMode reports whether m is a subset of the modes this
	// backend accepts.
	SupportsMode(m mode.Bits) bool

	// Info reports current size and capability metadata.
	Info() Info

	// Destroy drops all entries. For disk backends it also unlinks the
	// backing file or directory.
	Destroy() error

	// Count returns the number of entries.
	Count(m mode.Bits) (uint64, *Error)

	// Exists reports, for each key, whether it is present. Honors WAIT.
	Exists(m mode.Bits, keys [][]byte, timeout time.Duration) (flags []bool, err *Error)

	// Length returns the value length for each key, mode.KeyNotFound if
	// absent, or 0 for set backends. Honors WAIT.
	Length(m mode.Bits, keys [][]byte, timeout time.Duration) (sizes []uint64, err *Error)

	// Put inserts, updates, or appends keys/values, honoring NEW_ONLY,
	// EXIST_ONLY, APPEND, and NOTIFY. Set backends require every entry in
	// values to be empty.
	Put(m mode.Bits, keys, values [][]byte) *Error

	// Get copies each key's value into sink, honoring CONSUME and WAIT.
	// It returns, for each key, the number of bytes written (or
	// mode.KeyNotFound / mode.SizeTooSmall).
	Get(m mode.Bits, keys [][]byte, sink Sink, timeout time.Duration) (sizes []uint64, err *Error)

	// Erase removes keys. A missing key is not an error unless WAIT is
	// set, in which case the call blocks until the key appears so it can
	// be erased.
	Erase(m mode.Bits, keys [][]byte, timeout time.Duration) *Error

	// ListKeys performs an ordered scan starting at fromKey (inclusive or
	// exclusive per INCLUSIVE), matching entries against filter, and
	// copying up to maxRecords keys into keySink. Unordered backends
	// return ErrOpUnsupported.
	ListKeys(m mode.Bits, fromKey []byte, filter mode.Filter, keySink Sink, maxRecords int) (sizes []uint64, err *Error)

	// ListKeyValues is ListKeys plus values, written into valueSink.
	ListKeyValues(m mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink Sink, maxRecords int) (ksizes, vsizes []uint64, err *Error)
}

// Factory creates a new Backend instance from a raw JSON configuration
// blob. Registered under a name via Register; looked up by the provider
// when opening a database of that backend type.
type Factory func(rawConfig []byte) (Backend, *Error)
