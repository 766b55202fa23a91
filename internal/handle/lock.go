package handle

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
)

const (
	// extentMask clears the top bit of offsets and lengths, which some
	// platforms reject.
	extentMask = ^uint64(1 << 63)

	minLockBackoff = time.Millisecond
	maxLockBackoff = 50 * time.Millisecond
)

// errContended reports that a non-blocking lock attempt conflicted.
var errContended = errors.New("lock contended")

// ExtentGuard owns a byte range lock of an [IOHandle] and unlocks it when
// told to. A zero or released guard owns nothing.
type ExtentGuard struct {
	h         *IOHandle
	offset    uint64
	length    uint64
	exclusive bool
}

// Valid reports whether the guard owns a lock.
func (g *ExtentGuard) Valid() bool {
	return g != nil && g.h != nil
}

// Handle returns the handle the lock was taken through.
func (g *ExtentGuard) Handle() *IOHandle {
	if g == nil {
		return nil
	}

	return g.h
}

// SetHandle points the guard at another handle to the same file, such as
// after the original was moved.
func (g *ExtentGuard) SetHandle(h *IOHandle) {
	g.h = h
}

// Extent returns the locked region and whether the lock is exclusive. A
// length of zero means the whole file.
func (g *ExtentGuard) Extent() (offset, length uint64, exclusive bool) {
	if g == nil {
		return 0, 0, false
	}

	return g.offset, g.length, g.exclusive
}

// Unlock releases the lock. Unlocking a guard which owns nothing succeeds.
func (g *ExtentGuard) Unlock() error {
	if !g.Valid() {
		return nil
	}

	h := g.h
	g.h = nil

	return h.Unlock(g.offset, g.length)
}

// Release gives up ownership of the lock without unlocking it.
func (g *ExtentGuard) Release() {
	if g != nil {
		g.h = nil
	}
}

// Move transfers the ownership of the lock to a new guard.
func (g *ExtentGuard) Move() *ExtentGuard {
	if g == nil {
		return &ExtentGuard{}
	}

	n := *g
	g.h = nil

	return &n
}

// Lock locks the range of bytes from offset for length bytes, zero meaning
// the whole file. Locks are advisory. A zero deadline tries once and fails
// with [ErrTimedOut] if the range is contended.
func (h *IOHandle) Lock(offset, length uint64, exclusive bool, d deadline.Deadline) (*ExtentGuard, error) {
	offset &= extentMask
	length &= extentMask

	if err := h.lock(offset, length, exclusive, d.Begin(time.Now())); err != nil {
		h.diagnose("lock failed", err)

		return nil, fmt.Errorf("(handle-lock) %w", err)
	}

	return &ExtentGuard{h: h, offset: offset, length: length, exclusive: exclusive}, nil
}

// TryLock is [IOHandle.Lock] with a zero deadline.
func (h *IOHandle) TryLock(offset, length uint64, exclusive bool) (*ExtentGuard, error) {
	return h.Lock(offset, length, exclusive, deadline.Poll())
}

// LockForRead takes a shared lock over the region a read request covers. An
// empty request locks the whole file.
func (h *IOHandle) LockForRead(req IORequest[Buffer], d deadline.Deadline) (*ExtentGuard, error) {
	return h.Lock(req.Offset, requestLength(req.Buffers), false, d)
}

// LockForWrite takes an exclusive lock over the region a write request
// covers. An empty request locks the whole file.
func (h *IOHandle) LockForWrite(req IORequest[ConstBuffer], d deadline.Deadline) (*ExtentGuard, error) {
	return h.Lock(req.Offset, requestLength(req.Buffers), true, d)
}

// Unlock releases a lock previously taken over exactly the same range.
func (h *IOHandle) Unlock(offset, length uint64) error {
	if err := h.unlock(offset&extentMask, length&extentMask); err != nil {
		h.diagnose("unlock failed", err)

		return fmt.Errorf("(handle-unlock) %w", err)
	}

	return nil
}

// WithLock runs fn while holding a lock over the range.
func (h *IOHandle) WithLock(offset, length uint64, exclusive bool, d deadline.Deadline, fn func() error) (err error) {
	g, err := h.Lock(offset, length, exclusive, d)
	if err != nil {
		return err
	}

	defer func() {
		if uerr := g.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	return fn()
}

// retryLock drives non-blocking lock attempts until one succeeds, the
// deadline elapses or cancellation is requested.
func retryLock(t deadline.Timer, attempt func() error) error {
	backoff := minLockBackoff

	for {
		if t.Canceled() {
			return ErrOperationCanceled
		}

		err := attempt()
		if !errors.Is(err, errContended) {
			return err
		}

		now := time.Now()
		if t.Expired(now) {
			return ErrTimedOut
		}

		sleep := backoff
		if t.Bounded() {
			sleep = min(sleep, t.Remaining(now))
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-t.Done():
			timer.Stop()
		}

		backoff = min(backoff*2, maxLockBackoff) //nolint:mnd
	}
}
