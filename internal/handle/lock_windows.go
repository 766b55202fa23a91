//go:build windows

package handle

import (
	"errors"
	"math"

	"github.com/desertwitch/nativeio/internal/deadline"
	"golang.org/x/sys/windows"
)

func lockExtent(offset, length uint64) (*windows.Overlapped, uint32, uint32) {
	if length == 0 {
		offset, length = 0, math.MaxUint64
	}

	o := &windows.Overlapped{
		Offset:     uint32(offset),       //nolint:gosec
		OffsetHigh: uint32(offset >> 32), //nolint:gosec,mnd
	}

	return o, uint32(length), uint32(length >> 32) //nolint:gosec,mnd
}

func (h *IOHandle) lock(offset, length uint64, exclusive bool, t deadline.Timer) error {
	if !t.Bounded() && !t.Cancelable() && !h.v.IsOverlapped() {
		return h.lockOnce(offset, length, exclusive, true)
	}

	return retryLock(t, func() error {
		return h.lockOnce(offset, length, exclusive, false)
	})
}

func (h *IOHandle) lockOnce(offset, length uint64, exclusive, wait bool) error {
	var flags uint32
	if exclusive {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	if !wait {
		flags |= windows.LOCKFILE_FAIL_IMMEDIATELY
	}

	o, lo, hi := lockExtent(offset, length)

	err := windows.LockFileEx(h.v.Sys(), flags, 0, lo, hi, o)
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return errContended
	}

	return err
}

func (h *IOHandle) unlock(offset, length uint64) error {
	o, lo, hi := lockExtent(offset, length)

	return windows.UnlockFileEx(h.v.Sys(), 0, lo, hi, o)
}
