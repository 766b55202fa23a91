//go:build unix

package native

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FromFd returns a [Handle] for the open descriptor fd. The kind and
// seekability bits are taken from fstat and added to the capability bits d.
func FromFd(fd int, d Disposition) (Handle, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return Handle{}, fmt.Errorf("(native-fstat) %w", err)
	}

	switch uint32(st.Mode) & unix.S_IFMT { //nolint:unconvert
	case unix.S_IFREG, unix.S_IFBLK:
		d |= DispositionFile | DispositionSeekable
	case unix.S_IFDIR:
		d |= DispositionDirectory | DispositionSeekable
	case unix.S_IFLNK:
		d |= DispositionSymlink
	}

	return New(uintptr(fd), d), nil
}

// Fd returns the descriptor, or -1 for an invalid handle.
func (h Handle) Fd() int {
	if !h.IsValid() {
		return -1
	}

	return int(h.Value)
}

// Dup duplicates the descriptor with close-on-exec set. The duplicate
// carries the same disposition.
func (h Handle) Dup() (Handle, error) {
	if !h.IsValid() {
		return Handle{}, fmt.Errorf("(native-dup) %w", ErrInvalidHandle)
	}

	fd, err := unix.FcntlInt(h.Value, unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return Handle{}, fmt.Errorf("(native-dup) %w", err)
	}

	return Handle{Disposition: h.Disposition, Value: uintptr(fd)}, nil
}

// Close closes the descriptor and invalidates the handle. Closing an invalid
// handle is a no-op.
func (h *Handle) Close() error {
	if !h.IsValid() {
		return nil
	}

	v := h.Release()
	if err := unix.Close(int(v.Value)); err != nil {
		return fmt.Errorf("(native-close) %w", err)
	}

	return nil
}
