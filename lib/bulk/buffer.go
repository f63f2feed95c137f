// Package bulk implements the pull-sizes/pull-data/push-results handler
// pattern that lets a single RPC exchange move many keys and values in
// one round trip against a backend.Backend, plus the staging buffer
// that pattern reads and writes through.
package bulk

import (
	"github.com/kvprovider/kvprovider/lib/backend"
)

// Buffer is a staging region for one bulk-transfer RPC. A caller (the
// transport layer) fills it with the request's packed keys/values via
// Push, hands it to a handler, and reads results back out via Pull. It
// is the in-process analogue of a bulk-transfer handle: a contiguous
// byte region views can be sliced from without additional copies once
// staged.
type Buffer struct {
	data []byte
}

// Push copies src into the buffer at offset, growing the backing slice
// if needed.
func (b *Buffer) Push(offset int, src []byte) {
	need := offset + len(src)
	if need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[offset:], src)
}

// Pull returns a view of length bytes at offset. The returned slice
// aliases the buffer; callers that need to retain it past the buffer's
// release must copy it themselves.
func (b *Buffer) Pull(offset, length int) []byte {
	if offset < 0 || length < 0 || offset+length > len(b.data) {
		return nil
	}
	return b.data[offset : offset+length]
}

// Len reports the current capacity of the staging region.
func (b *Buffer) Len() int { return len(b.data) }

// packedSink adapts a Buffer region to backend.Sink for a Get/ListKeys
// call whose results should be written back into the same staging
// buffer at a caller-chosen offset, without an intermediate allocation.
type packedSink struct {
	buf       *Buffer
	offset    int
	remaining int
}

// NewSink returns a backend.Sink that packs emissions into buf starting
// at offset, up to capacity bytes total.
func NewSink(buf *Buffer, offset, capacity int) backend.Sink {
	return &packedSink{buf: buf, offset: offset, remaining: capacity}
}

func (s *packedSink) Cap(i int) int { return s.remaining }

func (s *packedSink) Write(i int, data []byte) int {
	s.buf.Push(s.offset, data)
	s.offset += len(data)
	s.remaining -= len(data)
	return len(data)
}
