package handle

import (
	"errors"

	"golang.org/x/sys/unix"
)

// CachingOpenFlags returns the open(2) flags implementing a caching. Page
// cache bypass happens through F_NOCACHE in [ApplyCaching] instead.
func CachingOpenFlags(c Caching) int {
	switch c {
	case CachingNone, CachingReads:
		return unix.O_SYNC
	case CachingReadsAndMetadata:
		return unix.O_DSYNC
	}

	return 0
}

// ApplyCaching finishes setting up the caching of a freshly opened fd.
func ApplyCaching(fd int, c Caching) error {
	if c != CachingNone && c != CachingOnlyMetadata {
		return nil
	}

	_, err := unix.FcntlInt(uintptr(fd), unix.F_NOCACHE, 1)

	return err
}

// AlignedIOSupported reports whether the platform bypasses the page cache
// with O_DIRECT, requiring aligned i/o.
const AlignedIOSupported = false

func barrierRange(fd int, _, _ int64, waitForDevice, _ bool) error {
	if waitForDevice {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		if err == nil || (!errors.Is(err, unix.ENOTSUP) && !errors.Is(err, unix.EINVAL)) {
			return err
		}
	}

	return ignoringEINTR(func() error { return unix.Fsync(fd) })
}
