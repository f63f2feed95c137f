package backend

import "github.com/kvprovider/kvprovider/lib/mode"

// Sink is the destination for bytes copied out of a backend during Get,
// ListKeys, or ListKeyValues. It models two buffering disciplines: an
// UnpackedSink gives every slot its own fixed
// capacity, while a PackedSink places emissions back-to-back in a single
// region and reports SizeTooSmall for every slot once the region has
// overflowed once.
type Sink interface {
	// Cap returns the number of bytes currently available for slot i.
	Cap(i int) int
	// Write copies data into slot i (or the next packed position) and
	// returns the number of bytes written. The caller must have already
	// checked Cap(i) >= len(data).
	Write(i int, data []byte) int
}

// UnpackedSink gives each of the n slots in Slots its own capacity, equal
// to len(Slots[i]) on construction.
type UnpackedSink struct {
	Slots [][]byte
}

// NewUnpackedSink allocates a slot of the given size for each entry in
// sizes.
func NewUnpackedSink(sizes []uint64) *UnpackedSink {
	slots := make([][]byte, len(sizes))
	for i, s := range sizes {
		slots[i] = make([]byte, s)
	}
	return &UnpackedSink{Slots: slots}
}

func (s *UnpackedSink) Cap(i int) int { return len(s.Slots[i]) }

func (s *UnpackedSink) Write(i int, data []byte) int {
	return copy(s.Slots[i], data)
}

// PackedSink places emissions back-to-back into a single growable buffer.
// Once a write overflows, PackedSink stops accepting further data and Cap
// reports zero for every subsequent slot: once overflow is observed,
// subsequent slots report SizeTooSmall without further copies.
type PackedSink struct {
	Buffer     []byte
	overflowed bool
}

// NewPackedSink creates a PackedSink with the given total capacity. A
// capacity of 0 means unbounded (the buffer grows as needed) -- used when
// the caller collects results in-process rather than against a fixed
// remote buffer.
func NewPackedSink(capacity int) *PackedSink {
	if capacity <= 0 {
		return &PackedSink{}
	}
	return &PackedSink{Buffer: make([]byte, 0, capacity)}
}

func (s *PackedSink) Cap(i int) int {
	if s.overflowed {
		return 0
	}
	if cap(s.Buffer) == 0 {
		return int(^uint(0) >> 1) // unbounded
	}
	return cap(s.Buffer) - len(s.Buffer)
}

func (s *PackedSink) Write(i int, data []byte) int {
	if s.overflowed {
		return 0
	}
	if cap(s.Buffer) != 0 && len(s.Buffer)+len(data) > cap(s.Buffer) {
		s.overflowed = true
		return 0
	}
	s.Buffer = append(s.Buffer, data...)
	return len(data)
}

// WriteToSink checks capacity, writes data into sink slot i, and returns
// the size to report for that slot: the written length on success, or
// mode.SizeTooSmall on overflow. For a PackedSink, one overflow poisons
// every later slot instead of attempting further copies.
func WriteToSink(sink Sink, i int, data []byte) uint64 {
	if sink.Cap(i) < len(data) {
		if ps, ok := sink.(*PackedSink); ok {
			ps.overflowed = true
		}
		return mode.SizeTooSmall
	}
	return uint64(sink.Write(i, data))
}
