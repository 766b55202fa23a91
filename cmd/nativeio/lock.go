package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
	"github.com/desertwitch/nativeio/internal/file"
	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/dustin/go-humanize"
)

// Lock acquires a byte range lock on FILE and holds it, for contention
// experiments across processes.
func (app *App) Lock(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("lock", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	shared := flags.Bool("shared", false, "take a shared instead of an exclusive lock")
	hold := flags.Duration("hold", 0, "release after this long, 0 holds until interrupted")
	wait := flags.Duration("wait", 0, "give up acquiring after this long, 0 waits until interrupted")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if flags.NArg() != 3 { //nolint:mnd
		return fmt.Errorf("%w: lock needs FILE OFFSET LENGTH", ErrUsage)
	}

	offset, err := humanize.ParseBytes(flags.Arg(1))
	if err != nil {
		return fmt.Errorf("%w: offset: %w", ErrUsage, err)
	}
	length, err := humanize.ParseBytes(flags.Arg(2))
	if err != nil {
		return fmt.Errorf("%w: length: %w", ErrUsage, err)
	}

	mode := handle.ModeWrite
	if *shared {
		mode = handle.ModeRead
	}

	f, err := file.Open(flags.Arg(0), mode, handle.CreationOpenExisting, app.settings.Caching, app.settings.Flags&^handle.FlagUnlinkOnClose)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer f.Close()

	lockCtx := ctx
	if *wait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, *wait)
		defer cancel()
	}

	guard, err := f.Lock(offset, length, !*shared, deadline.FromContext(lockCtx))
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer guard.Unlock() //nolint:errcheck

	slog.Info("Lock acquired:",
		"path", f.Path(),
		"offset", offset,
		"length", length,
		"exclusive", !*shared,
		"byte_lock_insanity", f.Flags().Has(handle.FlagByteLockInsanity),
	)

	acquired, path := time.Now(), f.Path()
	defer app.setStatus(func() []any {
		return []any{
			"path", path,
			"offset", offset,
			"length", length,
			"exclusive", !*shared,
			"held", time.Since(acquired).Round(time.Second),
		}
	})()

	var expired <-chan time.Time
	if *hold > 0 {
		expired = time.After(*hold)
	}

	select {
	case <-ctx.Done():
	case <-expired:
	}

	if err := guard.Unlock(); err != nil {
		return err //nolint:wrapcheck
	}

	slog.Info("Lock released.", "path", f.Path())

	return nil
}
