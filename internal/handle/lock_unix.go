//go:build unix

package handle

import (
	"errors"

	"github.com/desertwitch/nativeio/internal/deadline"
	"golang.org/x/sys/unix"
)

func flockT(offset, length uint64, typ int16) unix.Flock_t {
	lk := unix.Flock_t{Type: typ, Whence: 0}
	if length != 0 {
		lk.Start = int64(offset) //nolint:gosec
		lk.Len = int64(length)   //nolint:gosec
	}

	return lk
}

func (h *IOHandle) lock(offset, length uint64, exclusive bool, t deadline.Timer) error {
	fd := h.v.Fd()

	if !t.Bounded() && !t.Cancelable() {
		return h.lockOnce(fd, offset, length, exclusive, true)
	}

	return retryLock(t, func() error {
		return h.lockOnce(fd, offset, length, exclusive, false)
	})
}

func (h *IOHandle) lockOnce(fd int, offset, length uint64, exclusive, wait bool) error {
	var err error

	handled := false
	if length == 0 {
		handled, err = wholeFileLock(fd, exclusive, wait)
	}

	if !handled {
		var typ int16 = unix.F_RDLCK
		if exclusive {
			typ = unix.F_WRLCK
		}

		lk := flockT(offset, length, typ)

		var insane bool
		insane, err = lockRange(fd, &lk, wait)
		if insane {
			h.flags |= FlagByteLockInsanity
		}
	}

	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EACCES) || errors.Is(err, unix.EWOULDBLOCK) {
		return errContended
	}

	return err
}

func (h *IOHandle) unlock(offset, length uint64) error {
	fd := h.v.Fd()

	if length == 0 {
		if handled, err := wholeFileUnlock(fd); handled {
			return err
		}
	}

	lk := flockT(offset, length, unix.F_UNLCK)

	return unlockRange(fd, &lk, h.flags.Has(FlagByteLockInsanity))
}
