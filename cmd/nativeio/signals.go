package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
)

const stackTraceBufMax = 1 << 24

type signalAction int

const (
	actionIgnore signalAction = iota
	actionCancel
	actionDumpStacks
	actionLogStatus
)

// signalHandler turns signals into actions on the running command. Only
// the first cancellation signal cancels; in-flight transfers still need
// to remove their intermediate files and release their locks, so repeats
// are reported instead of cutting that short.
type signalHandler struct {
	cancel   context.CancelFunc
	status   func()
	stacks   io.Writer
	canceled bool
}

func (s *signalHandler) handle(sig os.Signal) {
	switch signalActionFor(sig) {
	case actionCancel:
		if s.canceled {
			slog.Warn("Already canceling: waiting for in-flight transfers to clean up.", "signal", sig.String())

			return
		}
		s.canceled = true

		slog.Warn("Canceling: in-flight transfers are rolled back.", "signal", sig.String())
		s.cancel()

	case actionDumpStacks:
		buf := make([]byte, stackTraceBufMax)
		n := runtime.Stack(buf, true)
		s.stacks.Write(buf[:n]) //nolint:errcheck

	case actionLogStatus:
		if s.status != nil {
			s.status()
		}

	case actionIgnore:
	}
}

func (s *signalHandler) run(sigs <-chan os.Signal) {
	for sig := range sigs {
		s.handle(sig)
	}
}

// setupSignalHandlers routes the handled signals of the platform to a
// [signalHandler] for the lifetime of the process.
func setupSignalHandlers(cancel context.CancelFunc, status func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, handledSignals...)

	h := &signalHandler{
		cancel: cancel,
		status: status,
		stacks: os.Stderr,
	}

	go h.run(sigs)
}
