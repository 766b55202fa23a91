package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertwitch/nativeio/internal/queue"
	"github.com/desertwitch/nativeio/internal/transfer"
	"github.com/desertwitch/nativeio/internal/ui"
	"github.com/dustin/go-humanize"
)

// Copy transfers SRC to DST. A directory SRC is copied recursively, a file
// SRC into an existing directory DST keeps its name.
func (app *App) Copy(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("copy", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	uiEnabled := flags.Bool("ui", false, "show the progress UI")
	move := flags.Bool("move", false, "remove the sources after a successful transfer")
	verify := flags.Bool("verify", true, "re-read the destination and compare hashes")
	workers := flags.Int("workers", 1, "files copied at a time into the same destination directory")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if flags.NArg() != 2 { //nolint:mnd
		return fmt.Errorf("%w: copy needs SRC and DST", ErrUsage)
	}
	if *workers < 1 {
		return fmt.Errorf("%w: -workers must be at least 1", ErrUsage)
	}

	jobs, err := app.collectJobs(flags.Arg(0), flags.Arg(1))
	if err != nil {
		return err
	}

	manager := transfer.NewJobManager()
	manager.Enqueue(jobs...)

	handler := transfer.NewHandler(app.osOps, transfer.Options{
		Caching:      app.settings.Caching,
		Flags:        app.settings.Flags,
		ChunkSize:    app.settings.ChunkSize,
		Buffers:      app.settings.Buffers,
		LockTimeout:  app.settings.LockTimeout,
		Verify:       *verify,
		RemoveSource: *move,
		Workers:      *workers,
	})

	defer app.setStatus(func() []any { return progressAttrs(manager.Progress()) })()

	slog.Info("Starting transfer:",
		"files", len(jobs),
		"caching", app.settings.Caching,
		"flags", app.settings.Flags,
		"workers", *workers,
	)

	if *uiEnabled {
		return app.copyWithUI(ctx, handler, manager)
	}

	return runCopy(ctx, handler, manager)
}

func (app *App) collectJobs(src, dst string) ([]*transfer.Job, error) {
	st, err := app.osOps.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}

	if !st.IsDir() {
		if dt, err := app.osOps.Stat(dst); err == nil && dt.IsDir() {
			dst = filepath.Join(dst, filepath.Base(src))
		}

		return []*transfer.Job{{Source: src, Dest: dst, Size: uint64(st.Size())}}, nil //nolint:gosec
	}

	var jobs []*transfer.Job

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			if !d.IsDir() {
				slog.Debug("Skipped non-regular file", "path", path, "type", d.Type())
			}

			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		jobs = append(jobs, &transfer.Job{
			Source: path,
			Dest:   filepath.Join(dst, rel),
			Size:   uint64(info.Size()), //nolint:gosec
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source: %w", err)
	}

	return jobs, nil
}

func progressAttrs(p queue.Progress) []any {
	return []any{
		"files", fmt.Sprintf("%d/%d", p.ProcessedItems, p.TotalItems),
		"skipped", p.SkippedItems,
		"data", humanize.IBytes(p.TransferredBytes) + "/" + humanize.IBytes(p.TotalBytes),
		"progress", fmt.Sprintf("%.1f%%", p.ProgressPct),
	}
}

func runCopy(ctx context.Context, handler *transfer.Handler, manager *queue.Manager[string, *transfer.Job]) error {
	err := handler.ProcessQueue(ctx, manager)

	p := manager.Progress()
	slog.Info("Transfer finished:",
		"success", p.SuccessItems,
		"skipped", p.SkippedItems,
		"size", humanize.IBytes(p.TransferredBytes),
	)

	if err != nil {
		return err //nolint:wrapcheck
	}
	if p.SkippedItems > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSkippedJobs, p.SkippedItems, p.TotalItems)
	}

	return nil
}

// copyWithUI runs the transfer behind the progress UI. Logs go to the UI
// while it runs, and back to the terminal once it is closed.
func (app *App) copyWithUI(ctx context.Context, handler *transfer.Handler, manager *queue.Manager[string, *transfer.Job]) error {
	copyCtx, copyCancel := context.WithCancel(ctx)
	defer copyCancel()

	uiHandler := ui.NewHandler(ctx, copyCancel, "Copy", manager)

	terminal, _ := app.logs.GetHandler("terminal")
	app.logs.AddHandler("ui", newTintHandler(uiHandler.LogWriter, app.level, false))
	app.logs.RemoveHandler("terminal")

	restoreTerminal := sync.OnceFunc(func() {
		app.logs.RemoveHandler("ui")
		if terminal != nil {
			app.logs.AddHandler("terminal", terminal)
		}
	})
	defer restoreTerminal()

	var wg sync.WaitGroup
	var copyErr error

	wg.Add(1)
	go func() {
		defer wg.Done()

		for !uiHandler.Initialized.Load() && !uiHandler.Failed.Load() {
			if copyCtx.Err() != nil {
				copyErr = copyCtx.Err()

				return
			}
			time.Sleep(time.Millisecond)
		}

		copyErr = runCopy(copyCtx, handler, manager)
	}()

	uiErr := uiHandler.Launch()
	restoreTerminal()

	if uiErr != nil && !errors.Is(uiErr, context.Canceled) {
		slog.Error("UI failure: falling back to terminal.", "err", uiErr)
	}

	wg.Wait()

	return copyErr
}
