//go:build unix && !linux && !darwin

package handle

import "golang.org/x/sys/unix"

// CachingOpenFlags returns the open(2) flags implementing a caching.
func CachingOpenFlags(c Caching) int {
	switch c {
	case CachingNone, CachingReads, CachingReadsAndMetadata:
		return unix.O_SYNC
	}

	return 0
}

// ApplyCaching finishes setting up the caching of a freshly opened fd. There
// is nothing left to do here.
func ApplyCaching(int, Caching) error {
	return nil
}

// AlignedIOSupported reports whether the platform bypasses the page cache
// with O_DIRECT, requiring aligned i/o.
const AlignedIOSupported = false

func barrierRange(fd int, _, _ int64, _, _ bool) error {
	return ignoringEINTR(func() error { return unix.Fsync(fd) })
}
