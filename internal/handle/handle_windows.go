//go:build windows

package handle

import (
	"fmt"
	"strings"

	"github.com/desertwitch/nativeio/internal/native"
	"golang.org/x/sys/windows"
)

//nolint:gochecknoglobals
var (
	modkernel32    = windows.NewLazySystemDLL("kernel32.dll")
	procReOpenFile = modkernel32.NewProc("ReOpenFile")
)

// AlignedIOSupported reports whether the platform bypasses the page cache,
// requiring aligned i/o.
const AlignedIOSupported = true

// ShareAll lets every other opener read, write and delete.
const ShareAll = windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE | windows.FILE_SHARE_DELETE

// CachingFileFlags returns the CreateFile flags implementing a caching.
func CachingFileFlags(c Caching) uint32 {
	switch c {
	case CachingNone:
		return windows.FILE_FLAG_NO_BUFFERING | windows.FILE_FLAG_WRITE_THROUGH
	case CachingOnlyMetadata:
		return windows.FILE_FLAG_NO_BUFFERING
	case CachingReads, CachingReadsAndMetadata:
		return windows.FILE_FLAG_WRITE_THROUGH
	}

	return 0
}

// AccessRights returns the CreateFile access rights matching a disposition.
func AccessRights(d native.Disposition) uint32 {
	access := uint32(windows.SYNCHRONIZE | windows.FILE_READ_ATTRIBUTES)

	if d.Has(native.DispositionReadable) {
		access |= windows.GENERIC_READ
	}

	switch {
	case d.Has(native.DispositionAppendOnly):
		access |= windows.FILE_APPEND_DATA | windows.FILE_WRITE_ATTRIBUTES
	case d.Has(native.DispositionWritable):
		access |= windows.GENERIC_WRITE
	}

	return access
}

func syncNative(v native.Handle) error {
	return windows.FlushFileBuffers(v.Sys())
}

func nativePath(v native.Handle) (string, error) {
	buf := make([]uint16, windows.MAX_LONG_PATH)

	n, err := windows.GetFinalPathNameByHandle(v.Sys(), &buf[0], uint32(len(buf)), 0)
	if err != nil {
		return "", fmt.Errorf("(final-path) %w", err)
	}
	if int(n) > len(buf) {
		return "", fmt.Errorf("(final-path) %w", windows.ERROR_INSUFFICIENT_BUFFER)
	}

	p := windows.UTF16ToString(buf[:n])
	switch {
	case strings.HasPrefix(p, `\\?\UNC\`):
		p = `\\` + p[len(`\\?\UNC\`):]
	case strings.HasPrefix(p, `\\?\`):
		p = p[len(`\\?\`):]
	}

	return p, nil
}

// setAppendOnly only flips the disposition, writes then go to the end of
// the file through the magic offset.
func (h *Handle) setAppendOnly(enable bool) error {
	h.v.Set(native.DispositionAppendOnly, enable)

	return nil
}

func (h *Handle) reopen(c Caching) (native.Handle, error) {
	d := h.v.Disposition &^ native.DispositionAlignedIO
	if c.RequiresAlignedIO() {
		d |= native.DispositionAlignedIO
	}

	flags := CachingFileFlags(c)
	if d.Has(native.DispositionOverlapped) {
		flags |= windows.FILE_FLAG_OVERLAPPED
	}

	r, _, e := procReOpenFile.Call(uintptr(h.v.Sys()), uintptr(AccessRights(d)), uintptr(ShareAll), uintptr(flags))
	nh := windows.Handle(r)
	if nh == windows.InvalidHandle {
		return native.Handle{}, fmt.Errorf("(reopen) %w", e)
	}

	nv, err := native.FromHandle(nh, d)
	if err != nil {
		_ = windows.CloseHandle(nh)

		return native.Handle{}, err
	}

	return nv, nil
}
