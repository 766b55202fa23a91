//go:build unix && !linux

package handle

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// fdPath has no portable implementation outside of Linux.
func fdPath(int) (string, error) {
	return "", fmt.Errorf("(fd-path) %w", ErrNotSupported)
}

func reopenPath(int) string {
	return ""
}

func preadv(fd int, iovs [][]byte, off int64) (int, error) {
	return vectored(iovs, func(b []byte, done int) (int, error) {
		return unix.Pread(fd, b, off+int64(done))
	})
}

func pwritev(fd int, iovs [][]byte, off int64) (int, error) {
	return vectored(iovs, func(b []byte, done int) (int, error) {
		return unix.Pwrite(fd, b, off+int64(done))
	})
}

func readv(fd int, iovs [][]byte) (int, error) {
	return vectored(iovs, func(b []byte, _ int) (int, error) {
		return unix.Read(fd, b)
	})
}

func writev(fd int, iovs [][]byte) (int, error) {
	return vectored(iovs, func(b []byte, _ int) (int, error) {
		return unix.Write(fd, b)
	})
}

// vectored runs fn over the buffers in order until one comes back short.
// A failure after some bytes moved reports the partial transfer instead.
func vectored(iovs [][]byte, fn func(b []byte, done int) (int, error)) (int, error) {
	total := 0

	for _, b := range iovs {
		if len(b) == 0 {
			continue
		}

		n, err := fn(b, total)
		if n > 0 {
			total += n
		}
		if err != nil {
			if total > 0 {
				return total, nil
			}

			return 0, err
		}
		if n < len(b) {
			break
		}
	}

	return total, nil
}

// lockRange places a classic POSIX byte range lock, which belongs to the
// process and is dropped when any of its handles to the file closes.
func lockRange(fd int, lk *unix.Flock_t, wait bool) (insane bool, err error) {
	cmd := unix.F_SETLK
	if wait {
		cmd = unix.F_SETLKW
	}

	return true, ignoringEINTR(func() error { return unix.FcntlFlock(uintptr(fd), cmd, lk) })
}

func unlockRange(fd int, lk *unix.Flock_t, _ bool) error {
	return unix.FcntlFlock(uintptr(fd), unix.F_SETLK, lk)
}

// wholeFileLock uses flock(2), which belongs to the open file description
// just like the locks of other platforms.
func wholeFileLock(fd int, exclusive, wait bool) (bool, error) {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if !wait {
		how |= unix.LOCK_NB
	}

	err := ignoringEINTR(func() error { return unix.Flock(fd, how) })
	if errors.Is(err, unix.EWOULDBLOCK) {
		err = unix.EAGAIN
	}

	return true, err
}

func wholeFileUnlock(fd int) (bool, error) {
	return true, unix.Flock(fd, unix.LOCK_UN)
}
