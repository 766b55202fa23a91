// Package deadline implements the time bound handed to every potentially
// blocking handle operation.
//
// A [Deadline] is either unbounded, relative to the moment an operation
// begins, or an absolute point in time. A relative deadline of zero means
// "poll once and do not wait". A deadline may additionally carry a
// cancellation signal, normally bridged from a [context.Context] with
// [FromContext].
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type kind uint8

const (
	kindNone kind = iota
	kindRelative
	kindAbsolute
)

// Deadline bounds the time an operation may block. The zero value is
// unbounded and cannot be canceled.
type Deadline struct {
	kind kind
	dur  time.Duration
	at   time.Time
	done <-chan struct{}
	err  func() error
}

// None returns an unbounded [Deadline].
func None() Deadline {
	return Deadline{}
}

// After returns a [Deadline] that expires d after the operation begins.
// Negative durations are treated as zero.
func After(d time.Duration) Deadline {
	return Deadline{kind: kindRelative, dur: max(d, 0)}
}

// At returns a [Deadline] that expires at t.
func At(t time.Time) Deadline {
	return Deadline{kind: kindAbsolute, at: t}
}

// Poll returns a zero duration [Deadline]: the operation must either succeed
// immediately or fail without blocking.
func Poll() Deadline {
	return After(0)
}

// FromContext returns a [Deadline] bounded by the deadline of ctx, if any,
// that is canceled together with ctx.
func FromContext(ctx context.Context) Deadline {
	d := None()
	if at, ok := ctx.Deadline(); ok {
		d = At(at)
	}

	if ctx.Done() != nil {
		d.done = ctx.Done()
		d.err = ctx.Err
	}

	return d
}

// IsBounded reports whether the deadline limits the time an operation may take.
func (d Deadline) IsBounded() bool {
	return d.kind != kindNone
}

// IsPoll reports whether the deadline demands an immediate answer.
func (d Deadline) IsPoll() bool {
	return d.kind == kindRelative && d.dur == 0
}

// IsCancelable reports whether the deadline carries a cancellation signal.
func (d Deadline) IsCancelable() bool {
	return d.done != nil
}

func (d Deadline) String() string {
	switch d.kind {
	case kindRelative:
		if d.dur == 0 {
			return "deadline(poll)"
		}

		return fmt.Sprintf("deadline(+%s)", d.dur)
	case kindAbsolute:
		return fmt.Sprintf("deadline(%s)", d.at.Format(time.RFC3339Nano))
	default:
		return "deadline(none)"
	}
}

// Begin starts the clock for one operation. Relative deadlines are resolved
// against now.
func (d Deadline) Begin(now time.Time) Timer {
	t := Timer{done: d.done, err: d.err}

	switch d.kind {
	case kindRelative:
		t.bounded = true
		t.end = now.Add(d.dur)
	case kindAbsolute:
		t.bounded = true
		t.end = d.at
	}

	return t
}

// Timer is a [Deadline] resolved for one running operation.
type Timer struct {
	bounded bool
	end     time.Time
	done    <-chan struct{}
	err     func() error
}

// Bounded reports whether the timer ever expires.
func (t Timer) Bounded() bool {
	return t.bounded
}

// Cancelable reports whether the timer carries a cancellation signal.
func (t Timer) Cancelable() bool {
	return t.done != nil
}

// End returns the expiry time of a bounded timer.
func (t Timer) End() time.Time {
	return t.end
}

// Expired reports whether a bounded timer has run out at now.
func (t Timer) Expired(now time.Time) bool {
	return t.bounded && !now.Before(t.end)
}

// Remaining returns the time left at now. Unbounded timers return -1,
// expired ones return zero.
func (t Timer) Remaining(now time.Time) time.Duration {
	if !t.bounded {
		return -1
	}

	return max(t.end.Sub(now), 0)
}

// Canceled reports whether cancellation was requested. A context that ended
// because its own deadline passed counts as expiry, not cancellation.
func (t Timer) Canceled() bool {
	if t.done == nil {
		return false
	}

	select {
	case <-t.done:
		return !errors.Is(t.err(), context.DeadlineExceeded)
	default:
		return false
	}
}

// Done returns the cancellation channel, nil if there is none.
func (t Timer) Done() <-chan struct{} {
	return t.done
}
