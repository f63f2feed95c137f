// Package mode defines the operation mode bitfield understood by every
// backend and RPC handler in this module, and the Filter/keyCopy machinery
// that list operations use to interpret it.
//
// The mode word is a uint32 bundle of flags that perturbs the semantics of
// an operation without changing its shape: it selects inclusive/exclusive
// listing bounds, prefix-vs-suffix filtering, key elision during listing,
// overwrite policy on Put, and blocking behavior on missing keys. Backends
// advertise the subset of bits they honor through Bits.Supports, and each
// backend operation rejects any request whose mode carries a bit that
// backend does not support.
//
// Filter wraps a mode together with a prefix/suffix blob (or the name of a
// registered predicate, for LUA_FILTER/LIB_FILTER-style scripted matching)
// and exposes Check and ShouldStop, which ordered backends use to decide,
// for each candidate key, whether to include it and whether the scan can
// terminate early.
package mode
