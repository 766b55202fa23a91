package handle

import "errors"

var (
	// ErrTimedOut is an error that occurs when the [deadline.Deadline] of an
	// operation elapsed before it completed. A contended lock attempt with a
	// zero deadline fails with it, too.
	ErrTimedOut = errors.New("timed out")

	// ErrOperationCanceled is an error that occurs when cancellation was
	// requested and honored before an operation completed.
	ErrOperationCanceled = errors.New("operation canceled")

	// ErrNotSupported is an error that occurs when the configuration of a
	// handle cannot satisfy a request on this platform, such as a deadline
	// on a synchronous regular file. Callers should retry without the
	// deadline rather than treat it as transient.
	ErrNotSupported = errors.New("not supported")

	// ErrResourceUnavailableTryAgain is an error that occurs when a file is
	// transiently unavailable to a second opener, such as one that is
	// pending deletion on Windows.
	ErrResourceUnavailableTryAgain = errors.New("resource unavailable, try again")

	// ErrUnknownName is an error that occurs when parsing an enumeration or
	// flag name that does not exist.
	ErrUnknownName = errors.New("unknown name")
)
