//go:build windows

package handle

import (
	"errors"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
	"golang.org/x/sys/windows"
)

const cancelPollInterval = 100 * time.Millisecond

// appendOffset makes WriteFile append regardless of the file position.
const appendOffset = 0xFFFFFFFF

func (h *IOHandle) checkDeadline(t deadline.Timer) error {
	if t.Canceled() {
		return ErrOperationCanceled
	}
	if t.Bounded() && !h.v.IsOverlapped() {
		return ErrNotSupported
	}

	return nil
}

func (h *IOHandle) read(req IORequest[Buffer], t deadline.Timer) ([]Buffer, error) {
	if err := h.checkDeadline(t); err != nil {
		return nil, err
	}

	total := 0
	off := req.Offset

	for _, b := range req.Buffers {
		if len(b) == 0 {
			continue
		}

		n, err := h.transfer(b, off, false, t)
		if errors.Is(err, windows.ERROR_HANDLE_EOF) || errors.Is(err, windows.ERROR_BROKEN_PIPE) {
			err = nil
		}
		total += n
		if err != nil {
			if total > 0 {
				break
			}

			return nil, err
		}
		if n < len(b) {
			break
		}
		off += uint64(n)
	}

	return shrinkBuffers(req.Buffers, total), nil
}

func (h *IOHandle) write(req IORequest[ConstBuffer], t deadline.Timer) ([]ConstBuffer, error) {
	if err := h.checkDeadline(t); err != nil {
		return nil, err
	}

	total := 0
	off := req.Offset

	for _, b := range req.Buffers {
		if len(b) == 0 {
			continue
		}

		n, err := h.transfer(b, off, true, t)
		total += n
		if err != nil {
			if total > 0 {
				break
			}

			return nil, err
		}
		if n < len(b) {
			break
		}
		off += uint64(n)
	}

	return shrinkBuffers(req.Buffers, total), nil
}

func (h *IOHandle) overlapped(off uint64, write bool) *windows.Overlapped {
	o := &windows.Overlapped{}

	switch {
	case write && h.v.IsAppendOnly():
		o.Offset, o.OffsetHigh = appendOffset, appendOffset
	case h.v.IsSeekable():
		o.Offset = uint32(off)          //nolint:gosec
		o.OffsetHigh = uint32(off >> 32) //nolint:gosec,mnd
	}

	return o
}

func (h *IOHandle) transfer(b []byte, off uint64, write bool, t deadline.Timer) (int, error) {
	sys := h.v.Sys()
	o := h.overlapped(off, write)

	if h.v.IsOverlapped() {
		ev, err := windows.CreateEvent(nil, 1, 0, nil)
		if err != nil {
			return 0, err
		}
		defer windows.CloseHandle(ev) //nolint:errcheck
		o.HEvent = ev
	}

	var done uint32
	var err error
	if write {
		err = windows.WriteFile(sys, b, &done, o)
	} else {
		err = windows.ReadFile(sys, b, &done, o)
	}

	if errors.Is(err, windows.ERROR_IO_PENDING) {
		return h.await(o, t)
	}

	return int(done), err
}

// await waits for a pending overlapped transfer, canceling it once the
// deadline elapses or cancellation is requested.
func (h *IOHandle) await(o *windows.Overlapped, t deadline.Timer) (int, error) {
	sys := h.v.Sys()

	var reason error
	for reason == nil {
		wait := uint32(windows.INFINITE)
		if t.Bounded() {
			wait = uint32(t.Remaining(time.Now()).Milliseconds()) //nolint:gosec
		}
		if t.Cancelable() && (wait == windows.INFINITE || time.Duration(wait)*time.Millisecond > cancelPollInterval) {
			wait = uint32(cancelPollInterval.Milliseconds())
		}

		ev, err := windows.WaitForSingleObject(o.HEvent, wait)
		if err != nil {
			return 0, err
		}
		if ev == windows.WAIT_OBJECT_0 {
			break
		}

		switch {
		case t.Canceled():
			reason = ErrOperationCanceled
		case t.Expired(time.Now()):
			reason = ErrTimedOut
		}
	}

	if reason != nil {
		_ = windows.CancelIoEx(sys, o)
	}

	var done uint32
	err := windows.GetOverlappedResult(sys, o, &done, true)
	if errors.Is(err, windows.ERROR_OPERATION_ABORTED) && reason != nil {
		return int(done), reason
	}
	if reason != nil && err == nil && done == 0 {
		return 0, reason
	}

	return int(done), err
}

func (h *IOHandle) barrier(_ IORequest[ConstBuffer], _, _ bool, t deadline.Timer) error {
	if t.Bounded() {
		return ErrNotSupported
	}
	if t.Canceled() {
		return ErrOperationCanceled
	}

	return windows.FlushFileBuffers(h.v.Sys())
}

func isUnsupportedSync(err error) bool {
	return errors.Is(err, windows.ERROR_INVALID_FUNCTION)
}
