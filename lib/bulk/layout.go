package bulk

// SliceViews carves consecutive entries out of buf starting at offset,
// one per size in sizes, and returns the resulting [][]byte alongside
// the offset immediately after the last entry. Every returned slice
// aliases buf; nothing is copied.
func SliceViews(buf *Buffer, offset int, sizes []uint64) (views [][]byte, next int) {
	views = make([][]byte, len(sizes))
	for i, size := range sizes {
		views[i] = buf.Pull(offset, int(size))
		offset += int(size)
	}
	return views, offset
}
