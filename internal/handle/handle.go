// Package handle implements owning wrappers of operating system handles and
// the scatter-gather i/o, barrier and byte range locking on top of them.
package handle

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/desertwitch/nativeio/internal/native"
)

// UniqueID identifies the object behind a handle. For plain handles this is
// the raw value; file handles use the device and inode (volume and index on
// Windows), which is unique across the system.
type UniqueID struct {
	Hi uint64
	Lo uint64
}

// IsZero reports whether the identifier is unset.
func (u UniqueID) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

func (u UniqueID) String() string {
	return fmt.Sprintf("%016x%016x", u.Hi, u.Lo)
}

// Handle exclusively owns one [native.Handle] together with its kernel
// caching and flags. A Handle must not be copied after first use, pass it by
// pointer and transfer ownership with [Handle.Move].
//
// Dropping a valid Handle without closing it closes the native handle
// eventually and logs a warning to the diagnostics sink.
type Handle struct {
	v       native.Handle
	caching Caching
	flags   Flag

	cleanup runtime.Cleanup
	tracked bool
}

// New returns a Handle taking ownership of v.
func New(v native.Handle, caching Caching, flags Flag) *Handle {
	h := &Handle{}
	h.adopt(v, caching, flags)

	return h
}

func (h *Handle) adopt(v native.Handle, caching Caching, flags Flag) {
	if caching == CachingUnchanged {
		caching = CachingNone
	}

	h.v, h.caching, h.flags = v, caching, flags
	h.track()
}

// take strips the state from h, leaving it invalid.
func (h *Handle) take() (native.Handle, Caching, Flag) {
	h.untrack()

	v, c, f := h.v.Release(), h.caching, h.flags
	h.caching, h.flags = CachingUnchanged, FlagNone

	return v, c, f
}

func (h *Handle) track() {
	if !h.v.IsValid() {
		return
	}
	h.cleanup = runtime.AddCleanup(h, closeLeaked, h.v)
	h.tracked = true
}

func (h *Handle) untrack() {
	if h.tracked {
		h.cleanup.Stop()
		h.tracked = false
	}
}

func closeLeaked(v native.Handle) {
	Diagnose(slog.LevelWarn, "handle was dropped without closing it", 0, int64(v.Value))
	_ = v.Close()
}

// Move transfers ownership to a new Handle, leaving h invalid.
func (h *Handle) Move() *Handle {
	n := &Handle{}
	n.adopt(h.take())

	return n
}

// Swap exchanges the state of h and o.
func (h *Handle) Swap(o *Handle) {
	if h == o {
		return
	}

	hv, hc, hf := h.take()
	ov, oc, of := o.take()

	h.adopt(ov, oc, of)
	o.adopt(hv, hc, hf)
}

// Release gives up ownership of the native handle without closing it. The
// Handle is invalid afterwards.
func (h *Handle) Release() native.Handle {
	v, _, _ := h.take()

	return v
}

// Clone returns a new Handle to the same object, sharing its file position
// where one exists.
func (h *Handle) Clone() (*Handle, error) {
	v, err := h.v.Dup()
	if err != nil {
		return nil, fmt.Errorf("(handle-clone) %w", err)
	}

	return New(v, h.caching, h.flags), nil
}

// Close closes the native handle, first issuing a safety fsync when the
// caching calls for one. A Handle that failed to sync stays open, so Close
// can be retried. Closing an invalid Handle does nothing.
func (h *Handle) Close() error {
	if !h.v.IsValid() {
		return nil
	}

	if h.AreSafetyFsyncsIssued() && h.v.IsRegular() && h.v.IsWritable() {
		if err := syncNative(h.v); err != nil {
			Diagnose(slog.LevelError, "safety fsync on close failed", ErrorCode(err), int64(h.v.Value))

			return fmt.Errorf("(handle-close) safety fsync: %w", err)
		}
	}

	h.untrack()
	v := h.v.Release()

	if err := v.Close(); err != nil {
		return fmt.Errorf("(handle-close) %w", err)
	}

	return nil
}

// Native returns the native handle without giving up ownership.
func (h *Handle) Native() native.Handle {
	return h.v
}

// Flags returns the flags of the handle.
func (h *Handle) Flags() Flag {
	return h.flags
}

// KernelCaching returns the kernel caching of the handle.
func (h *Handle) KernelCaching() Caching {
	if h.caching == CachingUnchanged {
		return CachingNone
	}

	return h.caching
}

func (h *Handle) IsValid() bool           { return h.v.IsValid() }
func (h *Handle) IsReadable() bool        { return h.v.IsReadable() }
func (h *Handle) IsWritable() bool        { return h.v.IsWritable() }
func (h *Handle) IsAppendOnly() bool      { return h.v.IsAppendOnly() }
func (h *Handle) IsOverlapped() bool      { return h.v.IsOverlapped() }
func (h *Handle) IsSeekable() bool        { return h.v.IsSeekable() }
func (h *Handle) RequiresAlignedIO() bool { return h.v.RequiresAlignedIO() }
func (h *Handle) IsRegular() bool         { return h.v.IsRegular() }
func (h *Handle) IsDirectory() bool       { return h.v.IsDirectory() }
func (h *Handle) IsSymlink() bool         { return h.v.IsSymlink() }
func (h *Handle) IsMultiplexer() bool     { return h.v.IsMultiplexer() }
func (h *Handle) IsProcess() bool         { return h.v.IsProcess() }
func (h *Handle) IsSection() bool         { return h.v.IsSection() }

// AreReadsFromCache reports whether reads are served from the kernel cache.
func (h *Handle) AreReadsFromCache() bool {
	return h.KernelCaching().AreReadsFromCache()
}

// AreWritesDurable reports whether writes are on storage when they complete.
func (h *Handle) AreWritesDurable() bool {
	return h.KernelCaching().AreWritesDurable()
}

// AreSafetyFsyncsIssued reports whether truncation and close issue extra
// fsyncs.
func (h *Handle) AreSafetyFsyncsIssued() bool {
	return h.KernelCaching().AreSafetyFsyncsIssued(h.flags)
}

// UniqueID returns the identifier of the handle, which is the raw value.
func (h *Handle) UniqueID() UniqueID {
	if !h.v.IsValid() {
		return UniqueID{}
	}

	return UniqueID{Lo: uint64(h.v.Value)}
}

// Path returns the current path of the object behind the handle as the
// operating system reports it, or "" if the object has no path anymore or
// the platform cannot tell.
func (h *Handle) Path() string {
	if !h.v.IsValid() {
		return ""
	}

	p, err := nativePath(h.v)
	if err != nil {
		Diagnose(slog.LevelDebug, "path recovery failed", ErrorCode(err), int64(h.v.Value))

		return ""
	}

	return p
}

// SetAppendOnly switches atomic append-only writes on or off.
func (h *Handle) SetAppendOnly(enable bool) error {
	if !h.v.IsValid() {
		return fmt.Errorf("(handle-append) %w", native.ErrInvalidHandle)
	}

	if err := h.setAppendOnly(enable); err != nil {
		return fmt.Errorf("(handle-append) %w", err)
	}

	return nil
}

// SetKernelCaching changes the kernel caching by reopening the object behind
// the handle with the new caching. Either the whole change takes effect or
// none of it. The native handle value changes, and any locks held through
// the old value are released.
func (h *Handle) SetKernelCaching(c Caching) error {
	if c == CachingUnchanged || c == h.KernelCaching() {
		return nil
	}

	if !h.v.IsValid() {
		return fmt.Errorf("(handle-caching) %w", native.ErrInvalidHandle)
	}

	nv, err := h.reopen(c)
	if err != nil {
		return fmt.Errorf("(handle-caching) %w", err)
	}

	h.untrack()
	old := h.v
	h.v, h.caching = nv, c
	h.track()

	if err := old.Close(); err != nil {
		Diagnose(slog.LevelWarn, "closing the replaced handle failed", ErrorCode(err), int64(old.Value))
	}

	return nil
}

// String formats the handle as handle(<native>, <path>). The path is the
// current one as reported by [Handle.Path], empty where it cannot be
// recovered.
func (h *Handle) String() string {
	if !h.v.IsValid() {
		return "handle(invalid)"
	}

	return fmt.Sprintf("handle(%s, %s)", h.v, h.Path())
}
