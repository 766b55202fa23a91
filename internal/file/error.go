package file

import "errors"

var (
	// ErrNotSameFile is an error that occurs when the entry at the path of a
	// file no longer refers to the open file, so it must not be unlinked.
	ErrNotSameFile = errors.New("path no longer refers to the open file")

	// ErrAlreadyUnlinked is an error that occurs when unlinking a file twice.
	ErrAlreadyUnlinked = errors.New("file was already unlinked")
)
