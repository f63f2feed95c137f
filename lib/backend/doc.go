// Package backend defines the uniform batch key/value contract that every
// storage engine in this module implements, generalizing a single-key,
// TTL-oriented KVDB interface into a batched, mode-driven contract.
//
// A Backend is created from a JSON configuration by a Factory registered
// under a name (the backend type) and reports the
// set of mode.Bits it honors through SupportsMode. All read/write
// operations act on batches of keys packed as [][]byte, and every
// structural failure (malformed arguments, unsupported mode) is reported
// out-of-band as an *Error; per-key outcomes such as "not found" or
// "buffer too small" are reported in-band as sentinel sizes.
package backend
