//go:build windows

package main

import (
	"os"
	"syscall"
)

//nolint:gochecknoglobals
var handledSignals = []os.Signal{syscall.SIGTERM, os.Interrupt}

func signalActionFor(sig os.Signal) signalAction {
	switch sig {
	case syscall.SIGTERM, os.Interrupt:
		return actionCancel
	}

	return actionIgnore
}
