//go:build windows

package native

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// FromHandle returns a [Handle] for the open kernel handle h. The kind and
// seekability bits are queried from the kernel and added to the capability
// bits d.
func FromHandle(h windows.Handle, d Disposition) (Handle, error) {
	t, err := windows.GetFileType(h)
	if err != nil {
		return Handle{}, fmt.Errorf("(native-filetype) %w", err)
	}

	if t == windows.FILE_TYPE_DISK {
		var info windows.ByHandleFileInformation
		if err := windows.GetFileInformationByHandle(h, &info); err != nil {
			return Handle{}, fmt.Errorf("(native-fileinfo) %w", err)
		}

		switch {
		case info.FileAttributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0:
			d |= DispositionDirectory | DispositionSeekable
		case info.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0:
			d |= DispositionSymlink
		default:
			d |= DispositionFile | DispositionSeekable
		}
	}

	return New(uintptr(h), d), nil
}

// Sys returns the kernel handle.
func (h Handle) Sys() windows.Handle {
	if !h.IsValid() {
		return windows.InvalidHandle
	}

	return windows.Handle(h.Value)
}

// Dup duplicates the kernel handle with the same access rights. The
// duplicate carries the same disposition.
func (h Handle) Dup() (Handle, error) {
	if !h.IsValid() {
		return Handle{}, fmt.Errorf("(native-dup) %w", ErrInvalidHandle)
	}

	proc := windows.CurrentProcess()

	var out windows.Handle
	if err := windows.DuplicateHandle(proc, h.Sys(), proc, &out, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
		return Handle{}, fmt.Errorf("(native-dup) %w", err)
	}

	return Handle{Disposition: h.Disposition, Value: uintptr(out)}, nil
}

// Close closes the kernel handle and invalidates the handle. Closing an
// invalid handle is a no-op.
func (h *Handle) Close() error {
	if !h.IsValid() {
		return nil
	}

	v := h.Release()
	if err := windows.CloseHandle(windows.Handle(v.Value)); err != nil {
		return fmt.Errorf("(native-close) %w", err)
	}

	return nil
}
