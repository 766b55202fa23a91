//go:build unix

package handle

import (
	"errors"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
	"golang.org/x/sys/unix"
)

// cancelPollInterval bounds a single wait so that cancellation is noticed.
const cancelPollInterval = 100 * time.Millisecond

func iovecs[B Buffers](bufs []B) [][]byte {
	iovs := make([][]byte, len(bufs))
	for i, b := range bufs {
		iovs[i] = b
	}

	return iovs
}

func (h *IOHandle) read(req IORequest[Buffer], t deadline.Timer) ([]Buffer, error) {
	fd := h.v.Fd()

	if err := h.awaitReady(fd, unix.POLLIN, t); err != nil {
		return nil, err
	}

	iovs := iovecs(req.Buffers)

	var n int
	err := ignoringEINTR(func() error {
		var err error
		if h.v.IsSeekable() {
			n, err = preadv(fd, iovs, int64(req.Offset))
		} else {
			n, err = readv(fd, iovs)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return shrinkBuffers(req.Buffers, n), nil
}

func (h *IOHandle) write(req IORequest[ConstBuffer], t deadline.Timer) ([]ConstBuffer, error) {
	fd := h.v.Fd()

	if err := h.awaitReady(fd, unix.POLLOUT, t); err != nil {
		return nil, err
	}

	iovs := iovecs(req.Buffers)

	var n int
	err := ignoringEINTR(func() error {
		var err error
		if h.v.IsSeekable() && !h.v.IsAppendOnly() {
			n, err = pwritev(fd, iovs, int64(req.Offset))
		} else {
			n, err = writev(fd, iovs)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return shrinkBuffers(req.Buffers, n), nil
}

// awaitReady honors the deadline before a transfer. Regular files are
// always ready and cannot honor a bounded deadline at all.
func (h *IOHandle) awaitReady(fd int, events int16, t deadline.Timer) error {
	if !t.Bounded() && !t.Cancelable() {
		return nil
	}

	if h.v.IsRegular() {
		if t.Bounded() {
			return ErrNotSupported
		}
		if t.Canceled() {
			return ErrOperationCanceled
		}

		return nil
	}

	for {
		if t.Canceled() {
			return ErrOperationCanceled
		}

		wait := time.Duration(-1)
		if t.Bounded() {
			wait = t.Remaining(time.Now())
		}
		if t.Cancelable() && (wait < 0 || wait > cancelPollInterval) {
			wait = cancelPollInterval
		}

		timeout := -1
		if wait >= 0 {
			timeout = int((wait + time.Millisecond - 1) / time.Millisecond)
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: events}} //nolint:gosec
		n, err := unix.Poll(fds, timeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		if n > 0 {
			if fds[0].Revents&unix.POLLNVAL != 0 {
				return unix.EBADF
			}

			return nil
		}

		if t.Expired(time.Now()) {
			return ErrTimedOut
		}
	}
}

func (h *IOHandle) barrier(req IORequest[ConstBuffer], waitForDevice, andMetadata bool, t deadline.Timer) error {
	if t.Bounded() {
		return ErrNotSupported
	}
	if t.Canceled() {
		return ErrOperationCanceled
	}

	return barrierRange(h.v.Fd(), int64(req.Offset), int64(requestLength(req.Buffers)), waitForDevice, andMetadata) //nolint:gosec
}

func isUnsupportedSync(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.ENOSYS)
}
