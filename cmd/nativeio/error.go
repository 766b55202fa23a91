package main

import "errors"

var (
	// ErrUsage occurs when a command is given the wrong arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrSkippedJobs occurs when some files of a copy could not be
	// transferred.
	ErrSkippedJobs = errors.New("some files were skipped")
)
