package transfer

import (
	"unsafe"

	"github.com/desertwitch/nativeio/internal/handle"
)

// alignedBlock returns a buffer of size bytes whose first byte sits at a
// multiple of align, as uncached i/o needs.
func alignedBlock(size, align int) []byte {
	if align <= 1 {
		return make([]byte, size)
	}

	b := make([]byte, size+align)

	off := 0
	if r := int(uintptr(unsafe.Pointer(&b[0])) & uintptr(align-1)); r != 0 { //nolint:gosec
		off = align - r
	}

	return b[off : off+size : off+size]
}

// roundUp rounds n up to a multiple of align.
func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}

	return (n + align - 1) / align * align
}

// newBuffers allocates count chunks of size bytes, aligned when asked to.
func newBuffers(count, size, align int) []handle.Buffer {
	bufs := make([]handle.Buffer, count)
	for i := range bufs {
		bufs[i] = alignedBlock(size, align)
	}

	return bufs
}

// padded turns filled buffers into a write request, rounding the length of
// the last one up to the alignment. The padding is cut off by truncating
// the destination afterwards.
func padded(filled []handle.Buffer, align int) []handle.ConstBuffer {
	out := make([]handle.ConstBuffer, 0, len(filled))

	for _, b := range filled {
		if len(b) == 0 {
			break
		}

		l := len(b)
		if align > 1 && l%align != 0 {
			l = roundUp(l, align)
		}
		out = append(out, handle.ConstBuffer(b[:l]))
	}

	return out
}

// clip shrinks filled buffers to at most limit bytes in total.
func clip(filled []handle.Buffer, limit uint64) []handle.Buffer {
	out := make([]handle.Buffer, len(filled))

	for i, b := range filled {
		l := min(uint64(len(b)), limit)
		out[i] = b[:l]
		limit -= l
	}

	return out
}
