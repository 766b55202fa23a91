//go:build unix

package handle

import (
	"errors"
	"fmt"

	"github.com/desertwitch/nativeio/internal/native"
	"golang.org/x/sys/unix"
)

func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func syncNative(v native.Handle) error {
	return ignoringEINTR(func() error {
		return unix.Fsync(v.Fd())
	})
}

func nativePath(v native.Handle) (string, error) {
	return fdPath(v.Fd())
}

func (h *Handle) setAppendOnly(enable bool) error {
	fd := uintptr(h.v.Fd())

	fl, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("(fcntl-getfl) %w", err)
	}

	if enable {
		fl |= unix.O_APPEND
	} else {
		fl &^= unix.O_APPEND
	}

	if _, err := unix.FcntlInt(fd, unix.F_SETFL, fl); err != nil {
		return fmt.Errorf("(fcntl-setfl) %w", err)
	}

	h.v.Set(native.DispositionAppendOnly, enable)

	return nil
}

// AccessFlags returns the open(2) access flags matching a disposition.
func AccessFlags(d native.Disposition) int {
	var fl int

	switch {
	case d.Has(native.DispositionReadable | native.DispositionWritable):
		fl = unix.O_RDWR
	case d.Has(native.DispositionWritable):
		fl = unix.O_WRONLY
	default:
		fl = unix.O_RDONLY
	}

	if d.Has(native.DispositionAppendOnly) {
		fl |= unix.O_APPEND
	}

	return fl
}

func (h *Handle) reopen(c Caching) (native.Handle, error) {
	path := reopenPath(h.v.Fd())
	if path == "" {
		return native.Handle{}, fmt.Errorf("(reopen) no path to reopen: %w", ErrNotSupported)
	}

	fl := AccessFlags(h.v.Disposition) | unix.O_CLOEXEC | CachingOpenFlags(c)

	var fd int
	err := ignoringEINTR(func() error {
		var err error
		fd, err = unix.Open(path, fl, 0)

		return err
	})
	if err != nil {
		return native.Handle{}, fmt.Errorf("(reopen-open) %w", err)
	}

	if same, err := sameFile(h.v.Fd(), fd); err != nil || !same {
		_ = unix.Close(fd)
		if err == nil {
			err = unix.ESTALE
		}

		return native.Handle{}, fmt.Errorf("(reopen-verify) %w", err)
	}

	if err := ApplyCaching(fd, c); err != nil {
		_ = unix.Close(fd)

		return native.Handle{}, fmt.Errorf("(reopen-caching) %w", err)
	}

	d := h.v.Disposition &^ native.DispositionAlignedIO
	if c.RequiresAlignedIO() {
		d |= native.DispositionAlignedIO
	}

	nv, err := native.FromFd(fd, d)
	if err != nil {
		_ = unix.Close(fd)

		return native.Handle{}, err
	}

	return nv, nil
}

func sameFile(a, b int) (bool, error) {
	var sa, sb unix.Stat_t

	if err := unix.Fstat(a, &sa); err != nil {
		return false, fmt.Errorf("(fstat) %w", err)
	}
	if err := unix.Fstat(b, &sb); err != nil {
		return false, fmt.Errorf("(fstat) %w", err)
	}

	return sa.Dev == sb.Dev && sa.Ino == sb.Ino, nil
}
