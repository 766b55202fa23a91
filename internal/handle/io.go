package handle

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
	"github.com/desertwitch/nativeio/internal/native"
)

// Buffer is a region of memory to be filled by a read.
type Buffer []byte

// ConstBuffer is a region of memory to be written out.
type ConstBuffer []byte

// Buffers is satisfied by both kinds of buffer.
type Buffers interface {
	~[]byte
}

// IORequest is a scatter-gather list and the offset it starts at. Offset is
// ignored for handles which are not seekable or which append.
type IORequest[B Buffers] struct {
	Buffers []B
	Offset  uint64
}

// IOResult is the buffers actually filled or written, each shrunk to the
// bytes it transferred. Buffers following a short one are empty.
type IOResult[B Buffers] struct {
	Buffers []B

	transferred int
	computed    bool
}

// NewIOResult returns a result over the given buffers.
func NewIOResult[B Buffers](bufs []B) IOResult[B] {
	return IOResult[B]{Buffers: bufs}
}

// BytesTransferred returns the sum of the buffer lengths. The sum is only
// computed once.
func (r *IOResult[B]) BytesTransferred() int {
	if !r.computed {
		r.transferred = 0
		for _, b := range r.Buffers {
			r.transferred += len(b)
		}
		r.computed = true
	}

	return r.transferred
}

func shrinkBuffers[B Buffers](bufs []B, n int) []B {
	out := make([]B, len(bufs))

	for i, b := range bufs {
		l := min(len(b), n)
		out[i] = b[:l]
		n -= l
	}

	return out
}

func requestLength[B Buffers](bufs []B) uint64 {
	var n uint64
	for _, b := range bufs {
		n += uint64(len(b))
	}

	return n
}

// IOHandle is a [Handle] able to do scatter-gather i/o, barriers and byte
// range locks.
type IOHandle struct {
	Handle
}

// NewIO returns an IOHandle taking ownership of v.
func NewIO(v native.Handle, caching Caching, flags Flag) *IOHandle {
	h := &IOHandle{}
	h.adopt(v, caching, flags)

	return h
}

// AsIO moves the state of h into a new IOHandle, leaving h invalid.
func AsIO(h *Handle) *IOHandle {
	n := &IOHandle{}
	n.adopt(h.take())

	return n
}

// Move transfers ownership to a new IOHandle, leaving h invalid.
func (h *IOHandle) Move() *IOHandle {
	return AsIO(&h.Handle)
}

// Swap exchanges the state of h and o.
func (h *IOHandle) Swap(o *IOHandle) {
	h.Handle.Swap(&o.Handle)
}

// Clone returns a new IOHandle to the same object.
func (h *IOHandle) Clone() (*IOHandle, error) {
	c, err := h.Handle.Clone()
	if err != nil {
		return nil, err
	}

	return AsIO(c), nil
}

// Read fills the buffers of req starting at its offset. A short read is not
// an error, the result reports what was filled; reading at or past the end
// of a file fills nothing.
func (h *IOHandle) Read(req IORequest[Buffer], d deadline.Deadline) (IOResult[Buffer], error) {
	bufs, err := h.read(req, d.Begin(time.Now()))
	if err != nil {
		h.diagnose("read failed", err)

		return IOResult[Buffer]{}, fmt.Errorf("(handle-read) %w", err)
	}

	return NewIOResult(bufs), nil
}

// Write writes out the buffers of req starting at its offset, or at the end
// of the file for append-only handles. Writing past the end extends the file.
func (h *IOHandle) Write(req IORequest[ConstBuffer], d deadline.Deadline) (IOResult[ConstBuffer], error) {
	bufs, err := h.write(req, d.Begin(time.Now()))
	if err != nil {
		h.diagnose("write failed", err)

		return IOResult[ConstBuffer]{}, fmt.Errorf("(handle-write) %w", err)
	}

	return NewIOResult(bufs), nil
}

// ReadBuffer reads into a single buffer.
func (h *IOHandle) ReadBuffer(offset uint64, p []byte, d deadline.Deadline) (IOResult[Buffer], error) {
	return h.Read(IORequest[Buffer]{Buffers: []Buffer{p}, Offset: offset}, d)
}

// WriteBuffer writes a single buffer.
func (h *IOHandle) WriteBuffer(offset uint64, p []byte, d deadline.Deadline) (IOResult[ConstBuffer], error) {
	return h.Write(IORequest[ConstBuffer]{Buffers: []ConstBuffer{p}, Offset: offset}, d)
}

// ReadAt implements [io.ReaderAt].
func (h *IOHandle) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("(handle-readat) negative offset: %w", ErrNotSupported)
	}

	n := 0
	for n < len(p) {
		res, err := h.ReadBuffer(uint64(off)+uint64(n), p[n:], deadline.None())
		if err != nil {
			return n, err
		}

		m := res.BytesTransferred()
		if m == 0 {
			return n, io.EOF
		}
		n += m
	}

	return n, nil
}

// WriteAt implements [io.WriterAt].
func (h *IOHandle) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("(handle-writeat) negative offset: %w", ErrNotSupported)
	}

	n := 0
	for n < len(p) {
		res, err := h.WriteBuffer(uint64(off)+uint64(n), p[n:], deadline.None())
		if err != nil {
			return n, err
		}

		m := res.BytesTransferred()
		if m == 0 {
			return n, io.ErrShortWrite
		}
		n += m
	}

	return n, nil
}

// Barrier orders preceding writes before following ones, and optionally
// waits until they are on the device. The region of req is a hint only, a
// zero length covers the whole file. Platforms without an applicable
// primitive succeed without doing anything. The request buffers are handed
// back unchanged.
func (h *IOHandle) Barrier(req IORequest[ConstBuffer], waitForDevice, andMetadata bool, d deadline.Deadline) (IOResult[ConstBuffer], error) {
	err := h.barrier(req, waitForDevice, andMetadata, d.Begin(time.Now()))
	if err != nil && !errors.Is(err, ErrNotSupported) && isUnsupportedSync(err) {
		Diagnose(slog.LevelDebug, "barrier not applicable to handle, skipped", ErrorCode(err), int64(h.v.Value))
		err = nil
	}
	if err != nil {
		h.diagnose("barrier failed", err)

		return IOResult[ConstBuffer]{}, fmt.Errorf("(handle-barrier) %w", err)
	}

	return NewIOResult(req.Buffers), nil
}

func (h *IOHandle) diagnose(msg string, err error) {
	level := slog.LevelError
	if errors.Is(err, ErrTimedOut) || errors.Is(err, ErrOperationCanceled) || errors.Is(err, ErrNotSupported) {
		level = slog.LevelDebug
	}

	Diagnose(level, msg, ErrorCode(err), int64(h.v.Value))
}
