package mode

import "bytes"

// PredicateFunc evaluates a scripted or natively-loaded filter against a
// candidate key/value pair. It backs the LUA_FILTER and LIB_FILTER modes.
type PredicateFunc func(key, value []byte) bool

// Filter combines a mode word with either a prefix/suffix blob or, when
// LUA_FILTER or LIB_FILTER is set, the name of a predicate registered via
// Register. An empty, non-scripted filter matches every key.
type Filter struct {
	Mode      Bits
	Bytes     []byte
	predicate PredicateFunc
}

// NewFilter constructs a Filter, resolving the registered predicate up
// front when the mode requests a scripted or native filter so that Check
// never has to perform the lookup on every candidate key.
func NewFilter(m Bits, filterBytes []byte) Filter {
	f := Filter{Mode: m, Bytes: filterBytes}
	if m.Any(LUA_FILTER | LIB_FILTER) {
		f.predicate, _ = Lookup(string(filterBytes))
	}
	return f
}

// Check reports whether the given key/value pair matches the filter. For a
// scripted filter this evaluates the registered predicate (a missing
// predicate matches nothing); otherwise it performs a byte-for-byte
// prefix or suffix comparison, per the SUFFIX bit.
func (f Filter) Check(key, value []byte) bool {
	if f.Mode.Any(LUA_FILTER | LIB_FILTER) {
		if f.predicate == nil {
			return false
		}
		return f.predicate(key, value)
	}
	if len(f.Bytes) == 0 {
		return true
	}
	if len(f.Bytes) > len(key) {
		return false
	}
	if !f.Mode.Has(SUFFIX) {
		return bytes.Equal(key[:len(f.Bytes)], f.Bytes)
	}
	return bytes.Equal(key[len(key)-len(f.Bytes):], f.Bytes)
}

// ShouldStop reports whether an ordered scan has left the filter's ordered
// domain and can terminate early. For a plain prefix filter this is true
// once key no longer starts with the prefix and compares greater than any
// key that could (i.e. the scan has moved past the prefix's range). For a
// suffix or scripted filter there is no such shortcut, since suffix and
// predicate matches are not contiguous in key order.
func (f Filter) ShouldStop(key []byte) bool {
	if f.Mode.Any(LUA_FILTER | LIB_FILTER | SUFFIX) {
		return false
	}
	if len(f.Bytes) == 0 {
		return false
	}
	if len(key) < len(f.Bytes) {
		return bytes.Compare(key, f.Bytes[:len(key)]) > 0
	}
	return bytes.Compare(key[:len(f.Bytes)], f.Bytes) > 0
}

// KeyCopy computes the bytes of key that a listing operation should
// return, honoring IGNORE_KEYS, KEEP_LAST, and NO_PREFIX/SUFFIX. When elide
// is true the caller should report a zero-size emission without touching
// its destination sink at all (this is not a SizeTooSmall condition, just
// an intentionally empty one). Capacity checks against the caller's
// destination buffer are the sink's responsibility, not KeyCopy's.
func KeyCopy(m Bits, key []byte, filterSize int, isLast bool) (emit []byte, elide bool) {
	if m.Has(IGNORE_KEYS) && !(isLast && m.Has(KEEP_LAST)) {
		return nil, true
	}
	if !m.Has(NO_PREFIX) {
		return key, false
	}
	final := len(key) - filterSize
	if final < 0 {
		final = 0
	}
	if m.Has(SUFFIX) {
		return key[:final], false
	}
	return key[filterSize : filterSize+final], false
}
