package handle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// CachingOpenFlags returns the open(2) flags implementing a caching.
func CachingOpenFlags(c Caching) int {
	switch c {
	case CachingNone:
		return unix.O_SYNC | unix.O_DIRECT
	case CachingOnlyMetadata:
		return unix.O_DIRECT
	case CachingReads:
		return unix.O_SYNC
	case CachingReadsAndMetadata:
		return unix.O_DSYNC
	}

	return 0
}

// ApplyCaching finishes setting up the caching of a freshly opened fd. There
// is nothing left to do on Linux.
func ApplyCaching(int, Caching) error {
	return nil
}

// AlignedIOSupported reports whether the platform bypasses the page cache
// with O_DIRECT, requiring aligned i/o.
const AlignedIOSupported = true

func procFdPath(fd int) string {
	return "/proc/self/fd/" + strconv.Itoa(fd)
}

func fdPath(fd int) (string, error) {
	buf := make([]byte, unix.PathMax)

	n, err := unix.Readlink(procFdPath(fd), buf)
	if err != nil {
		return "", fmt.Errorf("(readlink) %w", err)
	}

	p := string(buf[:n])
	if strings.HasSuffix(p, " (deleted)") || !strings.HasPrefix(p, "/") {
		return "", nil
	}

	return p, nil
}

// reopenPath returns the magic link, which reopens the very same inode even
// after it was renamed or unlinked.
func reopenPath(fd int) string {
	return procFdPath(fd)
}

func barrierRange(fd int, offset, length int64, waitForDevice, andMetadata bool) error {
	switch {
	case andMetadata:
		return ignoringEINTR(func() error { return unix.Fsync(fd) })
	case waitForDevice:
		return ignoringEINTR(func() error { return unix.Fdatasync(fd) })
	}

	err := ignoringEINTR(func() error {
		return unix.SyncFileRange(fd, offset, length, unix.SYNC_FILE_RANGE_WAIT_BEFORE|unix.SYNC_FILE_RANGE_WRITE|unix.SYNC_FILE_RANGE_WAIT_AFTER)
	})
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.ESPIPE) {
		return ignoringEINTR(func() error { return unix.Fdatasync(fd) })
	}

	return err
}

func preadv(fd int, iovs [][]byte, off int64) (int, error) {
	return unix.Preadv(fd, iovs, off)
}

func pwritev(fd int, iovs [][]byte, off int64) (int, error) {
	return unix.Pwritev(fd, iovs, off)
}

func readv(fd int, iovs [][]byte) (int, error) {
	return unix.Readv(fd, iovs)
}

func writev(fd int, iovs [][]byte) (int, error) {
	return unix.Writev(fd, iovs)
}

// lockRange places or tests a byte range lock using open file description
// locks, which belong to the handle and not to the process. Kernels without
// them fall back to classic POSIX locks, reported by insane.
func lockRange(fd int, lk *unix.Flock_t, wait bool) (insane bool, err error) {
	cmd := unix.F_OFD_SETLK
	if wait {
		cmd = unix.F_OFD_SETLKW
	}

	err = ignoringEINTR(func() error { return unix.FcntlFlock(uintptr(fd), cmd, lk) })
	if !errors.Is(err, unix.EINVAL) {
		return false, err
	}

	cmd = unix.F_SETLK
	if wait {
		cmd = unix.F_SETLKW
	}
	lk.Pid = 0

	return true, ignoringEINTR(func() error { return unix.FcntlFlock(uintptr(fd), cmd, lk) })
}

func unlockRange(fd int, lk *unix.Flock_t, insane bool) error {
	cmd := unix.F_OFD_SETLK
	if insane {
		cmd = unix.F_SETLK
	}

	return unix.FcntlFlock(uintptr(fd), cmd, lk)
}

// wholeFileLock is not needed on Linux, where open file description locks
// of length zero cover the whole file.
func wholeFileLock(int, bool, bool) (bool, error) {
	return false, nil
}

func wholeFileUnlock(int) (bool, error) {
	return false, nil
}
