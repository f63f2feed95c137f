package mode

// Bits is a 32-bit flag bundle that controls filter interpretation,
// listing semantics, overwrite policy, and blocking semantics for a single
// batched operation. The numeric values are part of the wire contract and
// must never be changed; new flags are always appended.
type Bits uint32

const (
	// INCLUSIVE makes list operations treat FromKey as an inclusive lower
	// bound. Without it, listing starts strictly after FromKey.
	INCLUSIVE Bits = 0x1
	// APPEND makes Put append to an existing value instead of overwriting
	// it, if the backend supports appending.
	APPEND Bits = 0x2
	// CONSUME makes Get erase each key after it has been read.
	CONSUME Bits = 0x4
	// WAIT makes Exists/Length/Get/Erase block on a missing key until it
	// appears or the caller's timeout elapses.
	WAIT Bits = 0x8
	// NOTIFY makes Put wake any readers waiting on the keys it inserts.
	NOTIFY Bits = 0x10
	// NEW_ONLY makes Put fail with KeyExists if the key is already present.
	NEW_ONLY Bits = 0x20
	// EXIST_ONLY makes Put succeed only if the key is already present.
	EXIST_ONLY Bits = 0x40
	// NO_PREFIX strips the filter's prefix/suffix bytes from each emitted
	// key during a listing.
	NO_PREFIX Bits = 0x80
	// IGNORE_KEYS makes list_key_values return only value sizes; emitted
	// key sizes are zeroed unless KEEP_LAST applies to that record.
	IGNORE_KEYS Bits = 0x100
	// KEEP_LAST makes the last record of a listing page carry its real key
	// bytes even under IGNORE_KEYS, so callers can resume pagination.
	KEEP_LAST Bits = 0x200
	// SUFFIX makes the filter bytes be interpreted as a suffix instead of
	// the default prefix.
	SUFFIX Bits = 0x400
	// LUA_FILTER makes the filter bytes be interpreted as a scripted
	// predicate looked up by name among those added with Register.
	LUA_FILTER Bits = 0x800
	// IGNORE_DOCS is reserved for document-store variants.
	IGNORE_DOCS Bits = 0x1000
	// FILTER_VALUE is reserved for value-filter variants.
	FILTER_VALUE Bits = 0x2000
	// LIB_FILTER makes the filter bytes be interpreted as the name of a
	// dynamically registered native predicate.
	LIB_FILTER Bits = 0x4000
	// NO_RDMA is a transport hint reserved for direct (non-bulk) calls.
	NO_RDMA Bits = 0x8000
	// FILTER_IS_RELATIVE is reserved for value-filter variants.
	FILTER_IS_RELATIVE Bits = 0x10000
)

// Has reports whether all bits set in want are also set in m.
func (m Bits) Has(want Bits) bool {
	return m&want == want
}

// Any reports whether at least one bit of want is set in m.
func (m Bits) Any(want Bits) bool {
	return m&want != 0
}

// Supports reports whether m is a subset of the bits a backend accepts.
// Each backend's SupportsMode is built on it, and every backend operation
// rejects an unsupported mode with ErrOpUnsupported before touching data.
func (m Bits) Supports(accepted Bits) bool {
	return m & ^accepted == 0
}

// Sentinel size values returned in place of a real length in vsizes/ksizes
// slots. They are "in-band" per-key signals, not out-of-band errors.
const (
	// KeyNotFound marks a slot whose key was not present in the backend.
	KeyNotFound uint64 = ^uint64(0)
	// SizeTooSmall marks a slot whose destination buffer could not hold
	// the emitted bytes.
	SizeTooSmall uint64 = ^uint64(0) - 1
	// NoMoreKeys marks a trailing slot of a listing page beyond the last
	// record the backend produced.
	NoMoreKeys uint64 = ^uint64(0) - 2
)

// IsSentinel reports whether size is one of KeyNotFound, SizeTooSmall, or
// NoMoreKeys rather than a real length.
func IsSentinel(size uint64) bool {
	return size == KeyNotFound || size == SizeTooSmall || size == NoMoreKeys
}
