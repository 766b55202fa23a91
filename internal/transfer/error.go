package transfer

import "errors"

var (
	// ErrHashMismatch is an error that occurs when there is a source and
	// destination hash mismatch, this usually means that there are
	// underlying transfer or hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrRenameExists is an error that occurs when the intermediate file is
	// to be renamed to its final name, but that name already exists.
	ErrRenameExists = errors.New("rename destination already exists")

	// ErrSourceChanged is an error that occurs when the source file shrank
	// while it was being copied.
	ErrSourceChanged = errors.New("source changed during transfer")

	// ErrContextError is an error that occurs when processing stopped due to
	// the cancellation of the context.
	ErrContextError = errors.New("context error")
)
