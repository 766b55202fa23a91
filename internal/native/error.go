package native

import "errors"

// ErrInvalidHandle is an error that occurs when an operation that requires an
// operating system resource is attempted on an invalid [Handle].
var ErrInvalidHandle = errors.New("invalid native handle")
