package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/desertwitch/nativeio/internal/deadline"
	"github.com/desertwitch/nativeio/internal/file"
	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/desertwitch/nativeio/internal/queue"
)

// probeResult is what a single caching mode turned out as on a filesystem.
type probeResult struct {
	caching        handle.Caching
	id             handle.UniqueID
	readsFromCache bool
	writesDurable  bool
	safetyFsyncs   bool
	alignedIO      bool
	blockSize      int
	insanity       bool
	contended      bool
}

func (r probeResult) attrs() []any {
	return []any{
		"caching", r.caching,
		"id", r.id,
		"reads_from_cache", r.readsFromCache,
		"writes_durable", r.writesDurable,
		"safety_fsyncs", r.safetyFsyncs,
		"requires_aligned_io", r.alignedIO,
		"block_size", r.blockSize,
		"byte_lock_insanity", r.insanity,
		"second_handle_contended", r.contended,
	}
}

// Probe reports how each caching mode behaves for a temporary file in the
// given directory.
func (app *App) Probe(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("probe", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	dir := flags.String("dir", os.TempDir(), "directory to probe in")
	workers := flags.Int("workers", 1, "caching modes to probe at the same time")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	cachings := make([]handle.Caching, 0, handle.CachingSafetyFsyncs)
	for c := handle.CachingNone; c <= handle.CachingSafetyFsyncs; c++ {
		cachings = append(cachings, c)
	}

	results := make([]probeResult, len(cachings))
	tasks := queue.NewTaskManager()

	for i, c := range cachings {
		tasks.Add(func(ctx context.Context) error {
			r, err := probeCaching(ctx, *dir, c)
			if err != nil {
				slog.Warn("Probe failed:", "caching", c, "err", err)

				return fmt.Errorf("%s: %w", c, err)
			}
			results[i] = r

			return nil
		})
	}

	err := tasks.LaunchConcAndWait(ctx, *workers)

	for _, r := range results {
		if r.caching != handle.CachingUnchanged {
			slog.Info("Probed:", r.attrs()...)
		}
	}

	return err //nolint:wrapcheck
}

func probeCaching(ctx context.Context, dir string, c handle.Caching) (probeResult, error) {
	f, err := file.Temp(dir, c, handle.FlagUnlinkOnClose)
	if err != nil {
		return probeResult{}, err //nolint:wrapcheck
	}
	defer f.Close()

	r := probeResult{
		caching:        f.KernelCaching(),
		id:             f.UniqueID(),
		readsFromCache: f.AreReadsFromCache(),
		writesDurable:  f.AreWritesDurable(),
		safetyFsyncs:   f.AreSafetyFsyncsIssued(),
		alignedIO:      f.RequiresAlignedIO(),
	}

	if r.blockSize, err = f.BlockSize(); err != nil {
		return r, err //nolint:wrapcheck
	}

	if _, err := f.Barrier(handle.IORequest[handle.ConstBuffer]{}, true, false, deadline.None()); err != nil {
		return r, err //nolint:wrapcheck
	}

	guard, err := f.Lock(0, 0, true, deadline.FromContext(ctx))
	if err != nil {
		return r, err //nolint:wrapcheck
	}
	defer guard.Unlock() //nolint:errcheck

	r.insanity = f.Flags().Has(handle.FlagByteLockInsanity)

	other, err := file.Open(f.Path(), handle.ModeWrite, handle.CreationOpenExisting, c, handle.FlagNone)
	if err != nil {
		return r, fmt.Errorf("failed to open a second handle: %w", err)
	}
	defer other.Close()

	g2, err := other.TryLock(0, 0, false)
	switch {
	case err == nil:
		g2.Unlock() //nolint:errcheck
	case errors.Is(err, handle.ErrTimedOut):
		r.contended = true
	default:
		return r, err //nolint:wrapcheck
	}

	return r, nil
}
