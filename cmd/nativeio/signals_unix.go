//go:build unix

package main

import (
	"os"
	"syscall"
)

//nolint:gochecknoglobals
var handledSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR1, syscall.SIGUSR2}

// signalActionFor maps SIGTERM and SIGINT to cancellation, SIGUSR1 to a
// stack dump and SIGUSR2 to a status line of the running copy or lock.
func signalActionFor(sig os.Signal) signalAction {
	switch sig {
	case syscall.SIGTERM, syscall.SIGINT:
		return actionCancel
	case syscall.SIGUSR1:
		return actionDumpStacks
	case syscall.SIGUSR2:
		return actionLogStatus
	}

	return actionIgnore
}
