// Package native wraps a raw operating system file descriptor (POSIX) or
// kernel handle (Windows) together with the capability bits that were
// established for it when it was opened.
//
// A [Handle] is a plain value. Ownership of the underlying resource is tracked
// by whoever holds it, normally a [handle.Handle], and moving it out with
// [Handle.Release] leaves the source invalid.
package native

import (
	"fmt"
	"strings"
)

// Invalid is the raw value of a handle that refers to nothing. It equals -1
// for POSIX descriptors and INVALID_HANDLE_VALUE on Windows.
const Invalid = ^uintptr(0)

// Disposition is the set of capability bits of a [Handle].
type Disposition uint32

const (
	// DispositionInvalid is the disposition of a handle that refers to nothing.
	DispositionInvalid Disposition = 0

	DispositionReadable   Disposition = 1 << 0
	DispositionWritable   Disposition = 1 << 1
	DispositionAppendOnly Disposition = 1 << 2

	DispositionOverlapped Disposition = 1 << 4
	DispositionSeekable   Disposition = 1 << 5
	DispositionAlignedIO  Disposition = 1 << 6

	DispositionFile        Disposition = 1 << 8
	DispositionDirectory   Disposition = 1 << 9
	DispositionSymlink     Disposition = 1 << 10
	DispositionMultiplexer Disposition = 1 << 11
	DispositionProcess     Disposition = 1 << 12
	DispositionSection     Disposition = 1 << 13

	// DispositionKernelHandle marks the raw value as an operating system
	// resource. A handle without it is never valid.
	DispositionKernelHandle Disposition = 1 << 15
)

//nolint:gochecknoglobals
var dispositionNames = []struct {
	bit  Disposition
	name string
}{
	{DispositionReadable, "readable"},
	{DispositionWritable, "writable"},
	{DispositionAppendOnly, "append_only"},
	{DispositionOverlapped, "overlapped"},
	{DispositionSeekable, "seekable"},
	{DispositionAlignedIO, "aligned_io"},
	{DispositionFile, "file"},
	{DispositionDirectory, "directory"},
	{DispositionSymlink, "symlink"},
	{DispositionMultiplexer, "multiplexer"},
	{DispositionProcess, "process"},
	{DispositionSection, "section"},
}

// Has reports whether all bits of o are set.
func (d Disposition) Has(o Disposition) bool {
	return d&o == o
}

func (d Disposition) String() string {
	var parts []string
	for _, n := range dispositionNames {
		if d.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// Handle is a raw operating system resource plus its [Disposition]. The zero
// value is invalid.
type Handle struct {
	Disposition Disposition
	Value       uintptr
}

// New returns a [Handle] for the raw value v with the capability bits d.
func New(v uintptr, d Disposition) Handle {
	if v == Invalid {
		return Handle{}
	}

	return Handle{
		Disposition: d | DispositionKernelHandle,
		Value:       v,
	}
}

// IsValid reports whether the handle refers to an operating system resource.
func (h Handle) IsValid() bool {
	return h.Disposition.Has(DispositionKernelHandle) && h.Value != Invalid
}

func (h Handle) IsReadable() bool        { return h.Disposition.Has(DispositionReadable) }
func (h Handle) IsWritable() bool        { return h.Disposition.Has(DispositionWritable) }
func (h Handle) IsAppendOnly() bool      { return h.Disposition.Has(DispositionAppendOnly) }
func (h Handle) IsOverlapped() bool      { return h.Disposition.Has(DispositionOverlapped) }
func (h Handle) IsSeekable() bool        { return h.Disposition.Has(DispositionSeekable) }
func (h Handle) RequiresAlignedIO() bool { return h.Disposition.Has(DispositionAlignedIO) }
func (h Handle) IsRegular() bool         { return h.Disposition.Has(DispositionFile) }
func (h Handle) IsDirectory() bool       { return h.Disposition.Has(DispositionDirectory) }
func (h Handle) IsSymlink() bool         { return h.Disposition.Has(DispositionSymlink) }
func (h Handle) IsMultiplexer() bool     { return h.Disposition.Has(DispositionMultiplexer) }
func (h Handle) IsProcess() bool         { return h.Disposition.Has(DispositionProcess) }
func (h Handle) IsSection() bool         { return h.Disposition.Has(DispositionSection) }

// Set switches the bits of o on or off, leaving the raw value untouched.
func (h *Handle) Set(o Disposition, enable bool) {
	if enable {
		h.Disposition |= o
	} else {
		h.Disposition &^= o
	}
}

// Release moves the handle out, leaving the receiver invalid. The caller
// becomes responsible for closing the returned handle.
func (h *Handle) Release() Handle {
	ret := *h
	*h = Handle{}

	return ret
}

func (h Handle) String() string {
	if !h.IsValid() {
		return "native(invalid)"
	}

	return fmt.Sprintf("native(%d, %s)", h.Value, h.Disposition)
}
