package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/desertwitch/nativeio/internal/configuration"
	"github.com/desertwitch/nativeio/internal/syscalls"
)

// App carries what the commands share.
type App struct {
	settings *configuration.Settings
	osOps    *syscalls.OS
	logs     *SlogManager
	level    slog.Leveler
	stdout   io.Writer

	status atomic.Pointer[statusFunc]
}

// statusFunc describes what a running command is doing, as log attributes.
type statusFunc func() []any

func NewApp(settings *configuration.Settings, logs *SlogManager, level slog.Leveler, stdout io.Writer) *App {
	return &App{
		settings: settings,
		osOps:    &syscalls.OS{},
		logs:     logs,
		level:    level,
		stdout:   stdout,
	}
}

// Run dispatches args[0] to its command.
func (app *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("(app) %w: no command given", ErrUsage)
	}

	var err error

	switch args[0] {
	case "probe":
		err = app.Probe(ctx, args[1:])
	case "copy":
		err = app.Copy(ctx, args[1:])
	case "lock":
		err = app.Lock(ctx, args[1:])
	case "cat":
		err = app.Cat(ctx, args[1:])
	case "version":
		_, err = fmt.Fprintln(app.stdout, versionString())
	default:
		return fmt.Errorf("(app) %w: unknown command %q", ErrUsage, args[0])
	}

	if err != nil {
		return fmt.Errorf("(app-%s) %w", args[0], err)
	}

	return nil
}

// setStatus publishes the status of the running command until the
// returned function is called.
func (app *App) setStatus(fn statusFunc) func() {
	app.status.Store(&fn)

	return func() { app.status.CompareAndSwap(&fn, nil) }
}

// LogStatus logs what the running command is doing, if anything.
func (app *App) LogStatus() {
	fn := app.status.Load()
	if fn == nil {
		slog.Info("Status: idle.")

		return
	}

	slog.Info("Status:", (*fn)()...)
}

func versionString() string {
	if Version == "" {
		return "nativeio (development build)"
	}

	return "nativeio " + Version
}
